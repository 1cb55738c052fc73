package client

import (
	"context"
	"encoding/json"
	"net/http"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
)

// ClientService é o contrato que o handler de clientes espera.
type ClientService interface {
	Create(ctx context.Context, client domain.Client) (domain.Client, error)
	Get(ctx context.Context, id string) (domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
	Update(ctx context.Context, update domain.ClientUpdate) (domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de cliente.
type Handler struct {
	Service ClientService
	Logger  logger.Logger
}

// NewHandler cria o handler de clientes.
func NewHandler(svc ClientService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// GetHandler lida com GET /client/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	client, err := h.Service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, client)
}

// ListHandler lida com GET /all/client.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, clients)
}

// CreateHandler lida com POST /client.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.Client
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

// UpdateHandler lida com PUT /client: atualização parcial do cliente e,
// quando presente, do endereço.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var update domain.ClientUpdate
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

// DeleteHandler lida com DELETE /client (id no corpo).
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
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Cliente excluído com sucesso."})
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
		h.Logger.Error("erro interno no handler de clientes", err)
	}
	h.respondJSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}
