package orderservice

import (
	"context"

	"github.com/shopspring/decimal"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// OrderRepository define o contrato de persistência que o serviço de
// pedidos espera. Create, Update e Delete executam a reconciliação de
// estoque dentro de uma única transação cada.
type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Update(ctx context.Context, update domain.OrderUpdate) (domain.Order, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (domain.Order, error)
	FindAll(ctx context.Context) ([]domain.OrderSummary, error)
}

// Service implementa a lógica de negócio de pedidos.
type Service struct {
	repo   OrderRepository
	logger logger.Logger
}

// NewService cria o serviço de pedidos.
func NewService(repo OrderRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create valida o payload e registra o pedido em nome do usuário
// autenticado. Ou todas as linhas reservam estoque e o pedido entra, ou
// nada é gravado.
func (s *Service) Create(ctx context.Context, userID string, creation domain.OrderCreation) (domain.Order, error) {
	if creation.Name == "" {
		return domain.Order{}, apperror.NewValidationError("É necessário informar um nome para o pedido.")
	}
	if creation.Description == "" {
		return domain.Order{}, apperror.NewValidationError("É necessário informar uma descrição para o pedido.")
	}
	if creation.Status == nil || *creation.Status < domain.OrderStatusMin || *creation.Status > domain.OrderStatusMax {
		return domain.Order{}, apperror.NewValidationError("É necessário informar um status válido para o pedido.")
	}
	if creation.ClientID == "" {
		return domain.Order{}, apperror.NewValidationError("É necessário informar o cliente do pedido.")
	}
	if creation.Price.LessThanOrEqual(decimal.Zero) {
		return domain.Order{}, apperror.NewValidationError("É necessário informar um preço válido para o pedido.")
	}
	if len(creation.Items) == 0 {
		return domain.Order{}, apperror.NewValidationError("É necessário informar o(s) produtos do pedido.")
	}

	items := make([]domain.OrderItem, 0, len(creation.Items))
	seen := make(map[string]bool, len(creation.Items))
	for _, item := range creation.Items {
		if item.StockID == "" {
			return domain.Order{}, apperror.NewValidationError("Houve um problema ao criar o pedido. Por favor, entre em contato com o administrador do sistema.")
		}
		if item.Quantity <= 0 {
			return domain.Order{}, apperror.NewValidationError("É necessário informar uma quantidade válida para o produto.")
		}
		// Cada produto entra em uma única linha; repetido seria
		// rejeitado pela chave primária de order_items como erro 500.
		if seen[item.StockID] {
			return domain.Order{}, apperror.NewValidationError("Não é possível repetir o mesmo produto em mais de uma linha do pedido.")
		}
		seen[item.StockID] = true
		items = append(items, domain.OrderItem{StockID: item.StockID, Quantity: item.Quantity})
	}

	order, err := s.repo.Create(ctx, domain.Order{
		Name:        creation.Name,
		Description: creation.Description,
		Status:      *creation.Status,
		ClientID:    creation.ClientID,
		UserID:      userID,
		Price:       creation.Price,
		Items:       items,
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("pedido criado", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"items":    len(order.Items),
	})
	return order, nil
}

// Update aplica uma atualização parcial: campos ausentes ficam como
// estão e as linhas enviadas só ajustam quantidades de produtos que o
// pedido já possui. O criador do pedido nunca muda.
func (s *Service) Update(ctx context.Context, update domain.OrderUpdate) (domain.Order, error) {
	if update.ID == "" {
		return domain.Order{}, apperror.NewValidationError("Houve um erro ao atualizar o pedido. Por favor, entre em contato com o administrador do sistema.")
	}
	if update.Status != nil && (*update.Status < domain.OrderStatusMin || *update.Status > domain.OrderStatusMax) {
		return domain.Order{}, apperror.NewValidationError("É necessário informar um status válido para o pedido.")
	}
	if update.Price != nil && update.Price.LessThanOrEqual(decimal.Zero) {
		return domain.Order{}, apperror.NewValidationError("É necessário informar um preço válido para o pedido.")
	}
	if update.ClientID != nil && *update.ClientID == "" {
		return domain.Order{}, apperror.NewValidationError("É necessário informar o cliente do pedido.")
	}

	order, err := s.repo.Update(ctx, update)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info("pedido atualizado", map[string]interface{}{"order_id": order.ID})
	return order, nil
}

// Get busca um pedido com suas linhas.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, apperror.NewValidationError("Houve um erro ao buscar o pedido. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.FindByID(ctx, id)
}

// List lista todos os pedidos.
func (s *Service) List(ctx context.Context) ([]domain.OrderSummary, error) {
	return s.repo.FindAll(ctx)
}

// Delete cancela um pedido, devolvendo as reservas ao estoque. Pedido
// inexistente é sucesso: a exclusão é idempotente.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("Houve um erro ao deletar o pedido. Por favor, entre em contato com o administrador do sistema.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("pedido excluído", map[string]interface{}{"order_id": id})
	return nil
}
