package user

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/middleware"
	"govendas/internal/service/userservice"
)

// UserService é o contrato que o handler de usuários espera da camada
// de serviço.
type UserService interface {
	Register(ctx context.Context, reg domain.UserRegistration) (domain.User, string, error)
	Profile(ctx context.Context, userID string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, update domain.UserUpdate) error
	UpdatePermissions(ctx context.Context, update userservice.PermissionsUpdate) error
	Delete(ctx context.Context, id string) error
}

// Handler agrupa os endpoints de usuário.
type Handler struct {
	Service     UserService
	TokenExpiry time.Duration
	Logger      logger.Logger
}

// NewHandler cria o handler de usuários.
func NewHandler(svc UserService, tokenExpiry time.Duration, log logger.Logger) *Handler {
	return &Handler{Service: svc, TokenExpiry: tokenExpiry, Logger: log}
}

// RegisterHandler lida com POST /user. É a única rota de escrita aberta
// sem sessão: o cadastro já loga o usuário via cookie.
// @Summary Cadastra um novo usuário
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse
// @Router /user [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	user, tokenString, err := h.Service.Register(r.Context(), reg)
	if err != nil {
		h.respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, tokenString, h.TokenExpiry)
	h.respondJSON(w, http.StatusCreated, user)
}

// MeHandler lida com GET /user: o perfil do usuário autenticado.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaimsFromContext(r.Context())
	if !ok {
		h.respondError(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
		return
	}

	user, err := h.Service.Profile(r.Context(), claims.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

// ListHandler lida com GET /all/user.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

// UpdateHandler lida com PUT /user: atualização parcial.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var update domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	if err := h.Service.Update(r.Context(), update); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Usuário atualizado com sucesso!"})
}

// PermissionsHandler lida com PUT /user/permissions: troca o bitmask de
// permissões do usuário alvo.
func (h *Handler) PermissionsHandler(w http.ResponseWriter, r *http.Request) {
	var update userservice.PermissionsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	if err := h.Service.UpdatePermissions(r.Context(), update); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Permissões atualizadas com sucesso!"})
}

// DeleteHandler lida com DELETE /user (id no corpo).
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
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Usuário deletado com sucesso!"})
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
		h.Logger.Error("erro interno no handler de usuários", err)
	}
	h.respondJSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}
