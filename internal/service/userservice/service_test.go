package userservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/service/userservice"
)

// MockUserRepository é uma implementação mock da interface UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, update domain.UserUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePermissions(ctx context.Context, targetID string, permissions domain.Permission) error {
	args := m.Called(ctx, targetID, permissions)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenService é uma implementação mock da interface TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

// O custo mínimo do bcrypt mantém os testes rápidos.
const testBcryptCost = bcrypt.MinCost

func newService(repo *MockUserRepository, tokens *MockTokenService) *userservice.Service {
	return userservice.NewService(repo, tokens, testBcryptCost, logger.NewLogger("debug"))
}

// TestRegister_Success testa o cadastro: a senha vira hash, o usuário
// nasce sem permissões e a sessão já sai emitida.
func TestRegister_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	userID := uuid.NewString()
	reg := domain.UserRegistration{
		Name:     "Maria Silva",
		CPF:      "12345678900",
		Email:    "maria@example.com",
		Password: "senha-secreta",
	}

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		if u.Permissions != domain.PermissionNone {
			return false
		}
		// A senha nunca chega ao repositório em texto puro.
		return u.PasswordHash != reg.Password &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(reg.Password)) == nil
	})).Return(domain.User{ID: userID, Name: reg.Name, Email: reg.Email}, nil)
	mockTokens.On("GenerateToken", userID).Return("token-de-teste", nil)

	user, tokenString, err := svc.Register(context.Background(), reg)

	assert.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "token-de-teste", tokenString)
	mockRepo.AssertExpectations(t)
	mockTokens.AssertExpectations(t)
}

// TestRegister_CamposObrigatorios testa a rejeição de cadastros
// incompletos.
func TestRegister_CamposObrigatorios(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	valid := domain.UserRegistration{
		Name:     "Maria Silva",
		CPF:      "12345678900",
		Email:    "maria@example.com",
		Password: "senha-secreta",
	}

	cases := []struct {
		name   string
		mutate func(*domain.UserRegistration)
	}{
		{"sem nome", func(r *domain.UserRegistration) { r.Name = "" }},
		{"sem cpf", func(r *domain.UserRegistration) { r.CPF = "" }},
		{"sem senha", func(r *domain.UserRegistration) { r.Password = "" }},
		{"sem email", func(r *domain.UserRegistration) { r.Email = "" }},
		{"email inválido", func(r *domain.UserRegistration) { r.Email = "não-é-email" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := valid
			tc.mutate(&reg)

			_, _, err := svc.Register(context.Background(), reg)

			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}

	mockRepo.AssertNotCalled(t, "Save")
}

// TestRegister_EmailDuplicado testa o repasse do conflito de unicidade
// vindo do repositório.
func TestRegister_EmailDuplicado(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	mockRepo.On("Save", mock.Anything, mock.Anything).
		Return(domain.User{}, apperror.NewConflictError("Email e/ou CPF já cadastrado."))

	_, _, err := svc.Register(context.Background(), domain.UserRegistration{
		Name:     "Maria Silva",
		CPF:      "12345678900",
		Email:    "maria@example.com",
		Password: "senha-secreta",
	})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
	mockTokens.AssertNotCalled(t, "GenerateToken")
}

// TestLogin_Success testa o login com credenciais corretas.
func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	userID := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-secreta"), testBcryptCost)
	assert.NoError(t, err)

	mockRepo.On("FindByEmail", mock.Anything, "maria@example.com").
		Return(domain.User{ID: userID, PasswordHash: string(hash)}, nil)
	mockTokens.On("GenerateToken", userID).Return("token-de-teste", nil)

	tokenString, err := svc.Login(context.Background(), "maria@example.com", "senha-secreta")

	assert.NoError(t, err)
	assert.Equal(t, "token-de-teste", tokenString)
	mockRepo.AssertExpectations(t)
}

// TestLogin_CredenciaisInvalidas testa que email inexistente e senha
// errada produzem exatamente a mesma resposta.
func TestLogin_CredenciaisInvalidas(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	hash, err := bcrypt.GenerateFromPassword([]byte("senha-secreta"), testBcryptCost)
	assert.NoError(t, err)

	mockRepo.On("FindByEmail", mock.Anything, "fantasma@example.com").
		Return(domain.User{}, apperror.NewNotFoundError("Usuário não encontrado."))
	mockRepo.On("FindByEmail", mock.Anything, "maria@example.com").
		Return(domain.User{ID: uuid.NewString(), PasswordHash: string(hash)}, nil)

	_, errUnknown := svc.Login(context.Background(), "fantasma@example.com", "qualquer")
	_, errWrongPass := svc.Login(context.Background(), "maria@example.com", "senha-errada")

	assert.Error(t, errUnknown)
	assert.Error(t, errWrongPass)
	assert.IsType(t, &apperror.UnauthenticatedError{}, errUnknown)
	assert.IsType(t, &apperror.UnauthenticatedError{}, errWrongPass)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	mockTokens.AssertNotCalled(t, "GenerateToken")
}

// TestLogin_CamposVazios testa o login sem email ou sem senha.
func TestLogin_CamposVazios(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	_, err := svc.Login(context.Background(), "", "senha")
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.Login(context.Background(), "maria@example.com", "")
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "FindByEmail")
}

// TestUpdate_SenhaViraHash testa que uma senha presente na atualização
// chega ao repositório como hash.
func TestUpdate_SenhaViraHash(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	password := "senha-nova"
	mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u domain.UserUpdate) bool {
		return u.Password != nil && *u.Password != password &&
			bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)) == nil
	})).Return(nil)

	err := svc.Update(context.Background(), domain.UserUpdate{ID: uuid.NewString(), Password: &password})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdatePermissions testa a troca do conjunto de permissões e as
// validações do payload.
func TestUpdatePermissions(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockTokens := new(MockTokenService)
	svc := newService(mockRepo, mockTokens)

	targetID := uuid.NewString()
	perms := int64(domain.PermissionManageClients | domain.PermissionManageOrders)
	mockRepo.On("UpdatePermissions", mock.Anything, targetID, domain.Permission(perms)).Return(nil)

	err := svc.UpdatePermissions(context.Background(), userservice.PermissionsUpdate{
		TargetID:    targetID,
		Permissions: &perms,
	})
	assert.NoError(t, err)

	negative := int64(-1)
	cases := []userservice.PermissionsUpdate{
		{TargetID: "", Permissions: &perms},
		{TargetID: targetID, Permissions: nil},
		{TargetID: targetID, Permissions: &negative},
	}
	for _, update := range cases {
		err := svc.UpdatePermissions(context.Background(), update)
		assert.Error(t, err)
		assert.IsType(t, &apperror.ValidationError{}, err)
	}

	mockRepo.AssertExpectations(t)
}
