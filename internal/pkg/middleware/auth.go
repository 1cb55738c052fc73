package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"govendas/internal/domain"
	apperror "govendas/internal/errors"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/token"
)

// AccessTokenCookie é o nome do cookie HTTP-only que transporta o token
// de sessão.
const AccessTokenCookie = "access_token"

// ContextKey é um tipo próprio para chaves de contexto, evitando
// colisão com chaves string de outros pacotes.
type ContextKey int

const (
	userClaimsKey ContextKey = iota
)

// UserClaims são os dados do usuário autenticado anexados ao contexto
// da requisição.
type UserClaims struct {
	UserID string
}

// TokenService é o contrato de validação exigido pelo middleware.
type TokenService interface {
	ValidateToken(tokenString string) (*token.SessionClaims, error)
}

// UserDirectory é o contrato mínimo com o repositório de usuários: a
// identidade do token precisa referenciar um usuário que ainda existe,
// e as permissões são sempre relidas do banco.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
	Permissions(ctx context.Context, id string) (domain.Permission, error)
}

// SetSessionCookie grava o cookie de sessão HTTP-only na resposta.
func SetSessionCookie(w http.ResponseWriter, tokenString string, expiry time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    tokenString,
		Path:     "/",
		Expires:  time.Now().Add(expiry),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
}

// ClearSessionCookie instrui o cliente a descartar o cookie de sessão.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
}

// Authenticator valida o cookie de sessão e anexa a identidade do
// usuário ao contexto da requisição.
type Authenticator struct {
	tokens TokenService
	users  UserDirectory
	logger logger.Logger
}

// NewAuthenticator cria o middleware de autenticação.
func NewAuthenticator(tokens TokenService, users UserDirectory, log logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: log}
}

// Authenticate é o middleware que protege as rotas. Qualquer falha
// (cookie ausente, token inválido/expirado, usuário que não existe
// mais) limpa o cookie no cliente e responde 401.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(AccessTokenCookie)
		if err != nil || cookie.Value == "" {
			a.reject(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
			return
		}

		claims, err := a.tokens.ValidateToken(cookie.Value)
		if err != nil {
			a.reject(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
			return
		}

		// O token pode sobreviver ao usuário: confirma que a identidade
		// ainda referencia um registro real antes de liberar a rota.
		exists, err := a.users.Exists(r.Context(), claims.UserID)
		if err != nil {
			a.logger.Error("falha ao confirmar existência do usuário autenticado", err)
			a.reject(w, apperror.NewUnauthenticatedError("Erro ao verificar sua identidade. Faça login novamente."))
			return
		}
		if !exists {
			a.reject(w, apperror.NewUnauthenticatedError("Usuário não encontrado. Tente relogar no sistema."))
			return
		}

		ctx := context.WithValue(r.Context(), userClaimsKey, UserClaims{UserID: claims.UserID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission exige que o usuário autenticado possua todos os
// bits do bitmask informado. PermissionNone dispensa a checagem e a
// rota fica aberta a qualquer usuário autenticado.
func (a *Authenticator) RequirePermission(required domain.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if required == domain.PermissionNone {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := UserClaimsFromContext(r.Context())
			if !ok {
				a.reject(w, apperror.NewUnauthenticatedError("É necessário estar logado para acessar."))
				return
			}

			perms, err := a.users.Permissions(r.Context(), claims.UserID)
			if err != nil {
				if _, isNotFound := err.(*apperror.NotFoundError); isNotFound {
					a.reject(w, apperror.NewUnauthenticatedError("Login inválido. Tente logar novamente."))
					return
				}
				a.logger.Error("falha ao carregar permissões do usuário", err)
				a.reject(w, apperror.NewInternalError("falha ao carregar permissões", err))
				return
			}

			if !perms.Has(required) {
				a.writeError(w, apperror.NewPermissionError("Você não tem permissão para acessar este recurso."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserClaimsFromContext extrai a identidade anexada pelo Authenticate.
func UserClaimsFromContext(ctx context.Context) (UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(UserClaims)
	return claims, ok
}

// reject limpa o cookie de sessão e responde com o erro mapeado.
// Falhas de autenticação sempre invalidam a credencial no cliente.
func (a *Authenticator) reject(w http.ResponseWriter, err error) {
	ClearSessionCookie(w)
	a.writeError(w, err)
}

func (a *Authenticator) writeError(w http.ResponseWriter, err error) {
	status, category, message := apperror.MapToHTTPStatus(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	})
}
