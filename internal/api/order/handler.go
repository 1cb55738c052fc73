package order

import (
	"context"
	"encoding/json"
	"net/http"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/middleware"
)

// OrderService é o contrato que o handler de pedidos espera.
type OrderService interface {
	Create(ctx context.Context, userID string, creation domain.OrderCreation) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context) ([]domain.OrderSummary, error)
	Update(ctx context.Context, update domain.OrderUpdate) (domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de pedido.
type Handler struct {
	Service OrderService
	Logger  logger.Logger
}

// NewHandler cria o handler de pedidos.
func NewHandler(svc OrderService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetHandler lida com GET /order/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, order)
}

// ListHandler lida com GET /all/order. A listagem traz os nomes do
// cliente e do usuário criador de cada pedido.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, orders)
}

// CreateHandler lida com POST /order. O usuário criador vem da sessão
// autenticada, nunca do payload.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
		return
	}

	var creation domain.OrderCreation
	if err := json.NewDecoder(r.Body).Decode(&creation); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	created, err := h.Service.Create(r.Context(), claims.UserID, creation)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// UpdateHandler lida com PUT /order: atualização parcial dos campos do
// pedido e das quantidades dos itens existentes.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var update domain.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	updated, err := h.Service.Update(r.Context(), update)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

// DeleteHandler lida com DELETE /order (id no corpo). Excluir um pedido
// devolve as quantidades reservadas ao estoque.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	if err := h.Service.Delete(r.Context(), req.ID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Pedido excluído com sucesso."})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("falha ao codificar resposta JSON", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("erro interno no handler de pedidos", err)
	}
	h.respondJSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}
