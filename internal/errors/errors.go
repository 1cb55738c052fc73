package errors

import (
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros de negócio do
// GoVendas. O Handler usa Category e HTTPStatus para montar a resposta;
// o erro subjacente (quando existir) fica acessível via Unwrap.
type AppError interface {
	Error() string
	Category() string
	HTTPStatus() int
	Unwrap() error
}

// --- Erros de validação e de recurso ---

// ValidationError representa falha de validação de dados de entrada.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// --- Erros do estoque e da reconciliação de pedidos ---

// InsufficientStockError indica que a reserva pedida excede a
// quantidade disponível do produto.
type InsufficientStockError struct {
	Msg string
}

func (e *InsufficientStockError) Error() string    { return e.Msg }
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria o erro de estoque insuficiente.
func NewInsufficientStockError(msg string) AppError {
	return &InsufficientStockError{Msg: msg}
}

// InvalidStockItemError indica uma linha de produto malformada em uma
// atualização de pedido (sem produto e sem quantidade).
type InvalidStockItemError struct {
	Msg string
}

func (e *InvalidStockItemError) Error() string    { return e.Msg }
func (e *InvalidStockItemError) Category() string { return "INVALID_STOCK_ITEM" }
func (e *InvalidStockItemError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *InvalidStockItemError) Unwrap() error    { return nil }

// NewInvalidStockItemError cria o erro de linha de produto inválida.
func NewInvalidStockItemError(msg string) AppError {
	return &InvalidStockItemError{Msg: msg}
}

// --- Erros de autenticação e autorização ---

// UnauthenticatedError representa credencial ausente, inválida, expirada
// ou um usuário que não existe mais. O cliente deve descartar o cookie.
type UnauthenticatedError struct {
	Msg string
}

func (e *UnauthenticatedError) Error() string    { return e.Msg }
func (e *UnauthenticatedError) Category() string { return "UNAUTHENTICATED" }
func (e *UnauthenticatedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthenticatedError) Unwrap() error    { return nil }

// NewUnauthenticatedError cria o erro de autenticação.
func NewUnauthenticatedError(msg string) AppError {
	return &UnauthenticatedError{Msg: msg}
}

// PermissionError representa um usuário autenticado sem os bits de
// permissão exigidos pela operação.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string    { return e.Msg }
func (e *PermissionError) Category() string { return "INSUFFICIENT_PERMISSION" }
func (e *PermissionError) HTTPStatus() int  { return http.StatusForbidden }
func (e *PermissionError) Unwrap() error    { return nil }

// NewPermissionError cria o erro de permissão insuficiente.
func NewPermissionError(msg string) AppError {
	return &PermissionError{Msg: msg}
}

// --- Erros de conflito ---

// ConflictError representa a violação de uma restrição de unicidade
// (email/cpf já cadastrado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return e.Msg }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// ReferentialConflictError representa uma exclusão bloqueada por um
// registro dependente (cliente referenciado por pedido).
type ReferentialConflictError struct {
	Msg string
}

func (e *ReferentialConflictError) Error() string    { return e.Msg }
func (e *ReferentialConflictError) Category() string { return "REFERENTIAL_CONFLICT" }
func (e *ReferentialConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ReferentialConflictError) Unwrap() error    { return nil }

// NewReferentialConflictError cria o erro de conflito referencial.
func NewReferentialConflictError(msg string) AppError {
	return &ReferentialConflictError{Msg: msg}
}

// --- Erros de infraestrutura ---

// InternalError representa falhas inesperadas no servidor, serviço ou
// repositório. A mensagem original nunca vaza para o cliente.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string    { return fmt.Sprintf("erro interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor.
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um InternalError de falha no DB.
func NewDBError(msg string, err error) AppError {
	return NewInternalError(fmt.Sprintf("%s (DB): %s", msg, err.Error()), err)
}

// MapToHTTPStatus traduz um erro para o código HTTP, a categoria e a
// mensagem de resposta. Erros internos viram uma mensagem genérica para
// não vazar detalhes do servidor.
func MapToHTTPStatus(err error) (int, string, string) {
	if appErr, ok := err.(AppError); ok {
		if appErr.HTTPStatus() >= http.StatusInternalServerError {
			return appErr.HTTPStatus(), appErr.Category(),
				"Erro desconhecido. Por favor, entre em contato com o administrador do sistema."
		}
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	return http.StatusInternalServerError, "UNKNOWN_ERROR",
		"Erro desconhecido. Por favor, entre em contato com o administrador do sistema."
}
