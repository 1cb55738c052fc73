package stock

import (
	"context"
	"encoding/json"
	"net/http"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// StockService é o contrato que o handler de estoque espera.
type StockService interface {
	Create(ctx context.Context, stock domain.Stock) (domain.Stock, error)
	Get(ctx context.Context, id string) (domain.Stock, error)
	List(ctx context.Context) ([]domain.Stock, error)
	Update(ctx context.Context, update domain.StockUpdate) (domain.Stock, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria o handler de estoque.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetHandler lida com GET /stock/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	stock, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stock)
}

// ListHandler lida com GET /all/stock.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.Service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stocks)
}

// CreateHandler lida com POST /stock.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.Stock
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	created, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// UpdateHandler lida com PUT /stock: somente os campos presentes no
// payload são alterados.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var update domain.StockUpdate
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

// DeleteHandler lida com DELETE /stock (id no corpo).
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
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Produto excluído do estoque com sucesso."})
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
		h.Logger.Error("erro interno no handler de estoque", err)
	}
	h.respondJSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}
