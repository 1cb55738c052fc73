package clientservice

import (
	"context"
	"net/mail"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// ClientRepository define o contrato de persistência que o serviço de
// clientes espera.
type ClientRepository interface {
	Save(ctx context.Context, client domain.Client) (domain.Client, error)
	FindByID(ctx context.Context, id string) (domain.Client, error)
	FindAll(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, update domain.ClientUpdate) (domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// Service implementa a lógica de negócio de clientes.
type Service struct {
	repo   ClientRepository
	logger logger.Logger
}

// NewService cria o serviço de clientes.
func NewService(repo ClientRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Create valida e cadastra um cliente com seu endereço completo.
func (s *Service) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	if client.Name == "" {
		return domain.Client{}, apperror.NewValidationError("É necessário informar o nome do cliente.")
	}
	if !validEmail(client.Email) {
		return domain.Client{}, apperror.NewValidationError("É necessário informar um email válido para o cliente.")
	}
	if client.CPF == "" {
		return domain.Client{}, apperror.NewValidationError("É necessário informar o CPF do cliente.")
	}
	if client.Phone == "" {
		return domain.Client{}, apperror.NewValidationError("É necessário informar o telefone do cliente.")
	}
	if err := validateAddress(client.Address); err != nil {
		return domain.Client{}, err
	}

	created, err := s.repo.Save(ctx, client)
	if err != nil {
		return domain.Client{}, err
	}

	s.logger.Info("cliente cadastrado", map[string]interface{}{"client_id": created.ID})
	return created, nil
}

// Get busca um cliente pelo ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Client, error) {
	if id == "" {
		return domain.Client{}, apperror.NewValidationError("Houve um erro ao buscar o cliente. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.FindByID(ctx, id)
}

// List lista todos os clientes.
func (s *Service) List(ctx context.Context) ([]domain.Client, error) {
	return s.repo.FindAll(ctx)
}

// Update aplica uma atualização parcial ao cliente (e ao endereço,
// quando presente).
func (s *Service) Update(ctx context.Context, update domain.ClientUpdate) (domain.Client, error) {
	if update.ID == "" {
		return domain.Client{}, apperror.NewValidationError("Houve um erro ao atualizar o cliente. Por favor, entre em contato com o administrador do sistema.")
	}
	if update.Email != nil && !validEmail(*update.Email) {
		return domain.Client{}, apperror.NewValidationError("É necessário informar um email válido para o cliente.")
	}
	return s.repo.Update(ctx, update)
}

// Delete remove um cliente e seu endereço. Clientes com pedidos não
// podem ser removidos.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.NewValidationError("Houve um erro ao deletar o cliente. Por favor, entre em contato com o administrador do sistema.")
	}
	return s.repo.Delete(ctx, id)
}

func validateAddress(address domain.Address) error {
	switch {
	case address.Street == "":
		return apperror.NewValidationError("É necessário informar a rua no endereço do cliente.")
	case address.Number <= 0:
		return apperror.NewValidationError("É necessário informar um número válido no endereço do cliente.")
	case address.Neighborhood == "":
		return apperror.NewValidationError("É necessário informar o bairro no endereço do cliente.")
	case address.City == "":
		return apperror.NewValidationError("É necessário informar a cidade no endereço do cliente.")
	case address.State == "":
		return apperror.NewValidationError("É necessário informar o estado no endereço do cliente.")
	case address.Zipcode == "":
		return apperror.NewValidationError("É necessário informar o CEP no endereço do cliente.")
	case address.Country == "":
		return apperror.NewValidationError("É necessário informar o país no endereço do cliente.")
	}
	return nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
