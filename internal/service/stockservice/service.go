package stockservice

import (
	"context"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// StockRepository define o contrato de persistência que o serviço de
// estoque espera.
type StockRepository interface {
	Save(ctx context.Context, stock domain.Stock) (domain.Stock, error)
	FindByID(ctx context.Context, id string) (domain.Stock, error)
	FindAll(ctx context.Context) ([]domain.Stock, error)
	Update(ctx context.Context, update domain.StockUpdate) (domain.Stock, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa o CRUD administrativo do estoque. As reservas e
// devoluções causadas por pedidos não passam por aqui; elas são do
// razão de estoque, dentro das transações de pedido.
type Service struct {
	repo   StockRepository
	logger logger.Logger
}

// NewService cria o serviço de estoque.
func NewService(repo StockRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create valida e cadastra um produto.
func (s *Service) Create(ctx context.Context, stock domain.Stock) (domain.Stock, error) {
	if stock.Name == "" {
		return domain.Stock{}, apperror.NewValidationError("É necessário informar o nome do produto.")
	}
	if stock.Description == "" {
		return domain.Stock{}, apperror.NewValidationError("É necessário informar a descrição do produto.")
	}
	if stock.Quantity <= 0 {
		return domain.Stock{}, apperror.NewValidationError("É necessário informar uma quantidade válida do produto.")
	}

	created, err := s.repo.Save(ctx, stock)
	if err != nil {
		return domain.Stock{}, err
	}

	s.logger.Info("produto cadastrado", map[string]interface{}{"stock_id": created.ID, "quantity": created.Quantity})
	return created, nil
}

// Get busca um produto pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Stock, error) {
	if id == "" {
		return domain.Stock{}, apperror.NewValidationError("Houve um erro ao buscar o estoque. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.FindByID(ctx, id)
}

// List lista todos os produtos do estoque.
func (s *Service) List(ctx context.Context) ([]domain.Stock, error) {
	return s.repo.FindAll(ctx)
}

// Update aplica uma atualização parcial a um produto. Uma quantidade
// presente precisa ser não-negativa: zerar o estoque é permitido,
// negativo nunca.
func (s *Service) Update(ctx context.Context, update domain.StockUpdate) (domain.Stock, error) {
	if update.ID == "" {
		return domain.Stock{}, apperror.NewValidationError("Houve um erro ao atualizar o produto. Por favor, entre em contato com o administrador do sistema.")
	}
	if update.Quantity != nil && *update.Quantity < 0 {
		return domain.Stock{}, apperror.NewValidationError("É necessário informar uma quantidade válida do produto.")
	}
	return s.repo.Update(ctx, update)
}

// Delete remove um produto do estoque.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("Houve um erro ao deletar o produto. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.Delete(ctx, id)
}
