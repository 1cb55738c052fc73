package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/middleware"
)

// UserService é o contrato que o handler de autenticação espera.
type UserService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, userID string) (domain.User, error)
}

// LoginRequest é o payload de entrada do login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler agrupa os endpoints de sessão: login, logout e identidade.
type Handler struct {
	Service     UserService
	TokenExpiry time.Duration
	Logger      logger.Logger
}

// NewHandler cria o handler de autenticação.
func NewHandler(svc UserService, tokenExpiry time.Duration, log logger.Logger) *Handler {
	return &Handler{Service: svc, TokenExpiry: tokenExpiry, Logger: log}
}

// LoginHandler lida com POST /login. Sucesso grava o cookie de sessão;
// qualquer falha descarta o cookie que o cliente eventualmente tenha.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.ClearSessionCookie(w)
		h.respondError(w, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."))
		return
	}

	tokenString, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.ClearSessionCookie(w)
		h.respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, tokenString, h.TokenExpiry)
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Login realizado com sucesso!"})
}

// LogoutHandler lida com POST /logout: apenas descarta o cookie.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w)
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Logout realizado com sucesso!"})
}

// MeHandler lida com POST /auth: devolve o perfil do usuário dono da
// sessão atual.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.UserClaimsFromContext(r.Context())
	if !ok {
		middleware.ClearSessionCookie(w)
		h.respondError(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
		return
	}

	user, err := h.Service.Profile(r.Context(), claims.UserID)
	if err != nil {
		middleware.ClearSessionCookie(w)
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, user)
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
		h.Logger.Error("erro interno no handler de autenticação", err)
	}
	h.respondJSON(w, status, domain.ErrorResponse{Code: status, Category: category, Message: message})
}
