package orderservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/service/orderservice"
)

// MockOrderRepository é uma implementação mock da interface OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, update domain.OrderUpdate) (domain.Order, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]domain.OrderSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.OrderSummary), args.Error(1)
}

func intPtr(v int) *int { return &v }

func validCreation() domain.OrderCreation {
	return domain.OrderCreation{
		Name:        "Pedido de teste",
		Description: "Reposição da loja",
		Status:      intPtr(0),
		ClientID:    uuid.NewString(),
		Price:       decimal.NewFromFloat(149.90),
		Items: []domain.OrderItemCreation{
			{StockID: uuid.NewString(), Quantity: 2},
		},
	}
}

// TestCreateOrder_Success testa a criação de um pedido válido: o
// criador vem da sessão e as linhas são repassadas ao repositório.
func TestCreateOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	userID := uuid.NewString()
	creation := validCreation()
	saved := domain.Order{
		ID:       uuid.NewString(),
		Name:     creation.Name,
		ClientID: creation.ClientID,
		UserID:   userID,
		Price:    creation.Price,
		Items:    []domain.OrderItem{{StockID: creation.Items[0].StockID, Quantity: 2}},
	}

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(o domain.Order) bool {
		return o.UserID == userID && len(o.Items) == 1 && o.Items[0].Quantity == 2
	})).Return(saved, nil)

	order, err := svc.Create(context.Background(), userID, creation)

	assert.NoError(t, err)
	assert.Equal(t, saved.ID, order.ID)
	assert.Equal(t, userID, order.UserID)
	mockRepo.AssertExpectations(t)
}

// TestCreateOrder_CamposObrigatorios testa a rejeição de payloads sem
// os campos obrigatórios, sem tocar no repositório.
func TestCreateOrder_CamposObrigatorios(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	cases := []struct {
		name   string
		mutate func(*domain.OrderCreation)
	}{
		{"sem nome", func(c *domain.OrderCreation) { c.Name = "" }},
		{"sem descrição", func(c *domain.OrderCreation) { c.Description = "" }},
		{"sem status", func(c *domain.OrderCreation) { c.Status = nil }},
		{"status fora da faixa", func(c *domain.OrderCreation) { c.Status = intPtr(4) }},
		{"status negativo", func(c *domain.OrderCreation) { c.Status = intPtr(-1) }},
		{"sem cliente", func(c *domain.OrderCreation) { c.ClientID = "" }},
		{"preço zero", func(c *domain.OrderCreation) { c.Price = decimal.Zero }},
		{"preço negativo", func(c *domain.OrderCreation) { c.Price = decimal.NewFromInt(-10) }},
		{"sem itens", func(c *domain.OrderCreation) { c.Items = nil }},
		{"item sem produto", func(c *domain.OrderCreation) { c.Items[0].StockID = "" }},
		{"item com quantidade zero", func(c *domain.OrderCreation) { c.Items[0].Quantity = 0 }},
		{"item com quantidade negativa", func(c *domain.OrderCreation) { c.Items[0].Quantity = -3 }},
		{"produto repetido em duas linhas", func(c *domain.OrderCreation) { c.Items = append(c.Items, c.Items[0]) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			creation := validCreation()
			tc.mutate(&creation)

			_, err := svc.Create(context.Background(), uuid.NewString(), creation)

			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}

	mockRepo.AssertNotCalled(t, "Create")
}

// TestCreateOrder_EstoqueInsuficiente testa o repasse do erro de
// estoque insuficiente vindo do repositório.
func TestCreateOrder_EstoqueInsuficiente(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	repoErr := apperror.NewInsufficientStockError("Não há quantidades suficientes do produto no estoque. Verifique o estoque e tente novamente.")
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.Order{}, repoErr)

	_, err := svc.Create(context.Background(), uuid.NewString(), validCreation())

	assert.Error(t, err)
	assert.IsType(t, &apperror.InsufficientStockError{}, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdateOrder_Success testa a atualização parcial de um pedido.
func TestUpdateOrder_Success(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	orderID := uuid.NewString()
	update := domain.OrderUpdate{
		ID:     orderID,
		Status: intPtr(2),
		Items: []domain.OrderItemChange{
			{StockID: "stock-1", Quantity: intPtr(5)},
		},
	}
	updated := domain.Order{ID: orderID, Status: 2}

	mockRepo.On("Update", mock.Anything, update).Return(updated, nil)

	order, err := svc.Update(context.Background(), update)

	assert.NoError(t, err)
	assert.Equal(t, 2, order.Status)
	mockRepo.AssertExpectations(t)
}

// TestUpdateOrder_CamposInvalidos testa as validações da atualização.
func TestUpdateOrder_CamposInvalidos(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	badPrice := decimal.Zero
	emptyClient := ""

	cases := []struct {
		name   string
		update domain.OrderUpdate
	}{
		{"sem id", domain.OrderUpdate{}},
		{"status fora da faixa", domain.OrderUpdate{ID: "x", Status: intPtr(9)}},
		{"preço zero", domain.OrderUpdate{ID: "x", Price: &badPrice}},
		{"cliente vazio", domain.OrderUpdate{ID: "x", ClientID: &emptyClient}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), tc.update)

			assert.Error(t, err)
			assert.IsType(t, &apperror.ValidationError{}, err)
		})
	}

	mockRepo.AssertNotCalled(t, "Update")
}

// TestDeleteOrder_Idempotente testa a exclusão: o repositório trata o
// pedido inexistente como sucesso e o serviço só repassa.
func TestDeleteOrder_Idempotente(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	orderID := uuid.NewString()
	mockRepo.On("Delete", mock.Anything, orderID).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), orderID))
	mockRepo.AssertExpectations(t)
}

// TestDeleteOrder_SemID testa a exclusão sem id.
func TestDeleteOrder_SemID(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	err := svc.Delete(context.Background(), "")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "Delete")
}

// TestGetOrder testa a busca por id e a listagem.
func TestGetOrder(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := orderservice.NewService(mockRepo, logger.NewLogger("debug"))

	orderID := uuid.NewString()
	expected := domain.Order{ID: orderID, Name: "Pedido"}
	mockRepo.On("FindByID", mock.Anything, orderID).Return(expected, nil)

	order, err := svc.Get(context.Background(), orderID)

	assert.NoError(t, err)
	assert.Equal(t, expected, order)

	summaries := []domain.OrderSummary{{Order: expected, ClientName: "Cliente", UserName: "Usuário"}}
	mockRepo.On("FindAll", mock.Anything).Return(summaries, nil)

	list, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "Cliente", list[0].ClientName)
	mockRepo.AssertExpectations(t)
}
