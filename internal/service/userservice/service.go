package userservice

import (
	"context"
	"errors"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// UserRepository define o contrato de persistência que o serviço de
// usuários espera.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, update domain.UserUpdate) error
	UpdatePermissions(ctx context.Context, targetID string, permissions domain.Permission) error
	Delete(ctx context.Context, id string) error
}

// TokenService é o contrato de emissão de tokens de sessão.
type TokenService interface {
	GenerateToken(userID string) (string, error)
}

// PermissionsUpdate é o payload da troca de permissões de um usuário.
// Permissions é ponteiro para distinguir "ausente" de zero.
type PermissionsUpdate struct {
	TargetID    string `json:"target_id"`
	Permissions *int64 `json:"permissions"`
}

// Service implementa a lógica de negócio de usuários: cadastro, login,
// perfil, atualização, permissões e exclusão.
type Service struct {
	repo       UserRepository
	tokens     TokenService
	bcryptCost int
	logger     logger.Logger
}

// NewService cria o serviço de usuários.
func NewService(repo UserRepository, tokens TokenService, bcryptCost int, log logger.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, bcryptCost: bcryptCost, logger: log}
}

// Register cadastra um novo usuário e já emite o token de sessão: o
// cadastro loga o usuário. Novos usuários começam sem permissão alguma.
func (s *Service) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, string, error) {
	if reg.Name == "" {
		return domain.User{}, "", apperror.NewValidationError("É necessário informar o nome do usuário.")
	}
	if reg.CPF == "" {
		return domain.User{}, "", apperror.NewValidationError("É necessário informar o CPF do usuário.")
	}
	if reg.Password == "" {
		return domain.User{}, "", apperror.NewValidationError("É necessário informar uma senha para o usuário.")
	}
	if !validEmail(reg.Email) {
		return domain.User{}, "", apperror.NewValidationError("É necessário informar um email válido para o usuário.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.bcryptCost)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("falha ao gerar hash da senha", err)
	}

	user, err := s.repo.Save(ctx, domain.User{
		Name:         reg.Name,
		Email:        reg.Email,
		CPF:          reg.CPF,
		PasswordHash: string(hashed),
		Permissions:  domain.PermissionNone,
	})
	if err != nil {
		return domain.User{}, "", err
	}

	tokenString, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return domain.User{}, "", apperror.NewInternalError("falha ao gerar token de sessão", err)
	}

	s.logger.Info("usuário cadastrado", map[string]interface{}{"user_id": user.ID})
	return user, tokenString, nil
}

// Login autentica por email e senha e emite o token de sessão. Email
// inexistente e senha incorreta produzem a mesma resposta, para não dar
// pistas sobre quais emails estão cadastrados.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.NewValidationError("É necessário preencher todos os campos.")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return "", apperror.NewUnauthenticatedError("Login inválido. Certifique-se que o email e a senha estão corretos.")
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperror.NewUnauthenticatedError("Login inválido. Certifique-se que o email e a senha estão corretos.")
	}

	tokenString, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", apperror.NewInternalError("falha ao gerar token de sessão", err)
	}

	s.logger.Info("login realizado", map[string]interface{}{"user_id": user.ID})
	return tokenString, nil
}

// Profile retorna os dados do próprio usuário autenticado.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// List lista todos os usuários.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.FindAll(ctx)
}

// Update aplica uma atualização parcial. Uma senha presente é trocada
// pelo hash antes de chegar ao repositório.
func (s *Service) Update(ctx context.Context, update domain.UserUpdate) error {
	if update.ID == "" {
		return apperror.NewValidationError("Houve um erro ao atualizar o usuário. Por favor, entre em contato com o administrador do sistema.")
	}
	if update.Email != nil && !validEmail(*update.Email) {
		return apperror.NewValidationError("É necessário informar um email válido para o usuário.")
	}

	if update.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), s.bcryptCost)
		if err != nil {
			return apperror.NewInternalError("falha ao gerar hash da senha", err)
		}
		hash := string(hashed)
		update.Password = &hash
	}

	return s.repo.Update(ctx, update)
}

// UpdatePermissions substitui o bitmask de permissões do usuário alvo.
func (s *Service) UpdatePermissions(ctx context.Context, update PermissionsUpdate) error {
	if update.TargetID == "" || update.Permissions == nil || *update.Permissions < 0 {
		return apperror.NewValidationError("Houve um erro ao atualizar o usuário. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.UpdatePermissions(ctx, update.TargetID, domain.Permission(*update.Permissions))
}

// Delete remove um usuário.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("Houve um erro ao deletar o usuário. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.Delete(ctx, id)
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
