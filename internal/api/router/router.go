package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"govendas/internal/api/auth"
	"govendas/internal/api/client"
	"govendas/internal/api/order"
	"govendas/internal/api/stock"
	"govendas/internal/api/user"
	"govendas/internal/domain"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth   *auth.Handler
	User   *user.Handler
	Client *client.Handler
	Stock  *stock.Handler
	Order  *order.Handler
}

// RateLimit carrega os parâmetros do limitador global de requisições.
type RateLimit struct {
	Cache       cache.Client
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
//
// Usamos o ServeMux padrão do net/http: desde o Go 1.22 ele suporta
// método e parâmetros de caminho nos padrões, o que dispensa um mux de
// terceiros para uma API deste tamanho.
func NewRouter(h Handlers, authn *middleware.Authenticator, limit RateLimit) http.Handler {
	mux := http.NewServeMux()

	// --- Health check e documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	mux.HandleFunc("GET /swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "api/swagger.json")
	})

	// --- Sessão (rotas abertas) ---
	mux.HandleFunc("POST /login", h.Auth.LoginHandler)
	mux.HandleFunc("POST /logout", h.Auth.LogoutHandler)
	mux.Handle("POST /auth", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Auth.MeHandler)))

	// --- Usuários ---
	// O cadastro é aberto; todo o restante exige sessão e, nas
	// mutações administrativas, a permissão de gerência de usuários.
	mux.HandleFunc("POST /user", h.User.RegisterHandler)
	mux.Handle("GET /user", protect(authn, domain.PermissionNone, http.HandlerFunc(h.User.MeHandler)))
	mux.Handle("GET /all/user", protect(authn, domain.PermissionNone, http.HandlerFunc(h.User.ListHandler)))
	mux.Handle("PUT /user", protect(authn, domain.PermissionManageUsers, http.HandlerFunc(h.User.UpdateHandler)))
	mux.Handle("PUT /user/permissions", protect(authn, domain.PermissionManageUsers, http.HandlerFunc(h.User.PermissionsHandler)))
	mux.Handle("DELETE /user", protect(authn, domain.PermissionManageUsers, http.HandlerFunc(h.User.DeleteHandler)))

	// --- Clientes ---
	mux.Handle("GET /client/{id}", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Client.GetHandler)))
	mux.Handle("GET /all/client", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Client.ListHandler)))
	mux.Handle("POST /client", protect(authn, domain.PermissionManageClients, http.HandlerFunc(h.Client.CreateHandler)))
	mux.Handle("PUT /client", protect(authn, domain.PermissionManageClients, http.HandlerFunc(h.Client.UpdateHandler)))
	mux.Handle("DELETE /client", protect(authn, domain.PermissionManageClients, http.HandlerFunc(h.Client.DeleteHandler)))

	// --- Estoque ---
	mux.Handle("GET /stock/{id}", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Stock.GetHandler)))
	mux.Handle("GET /all/stock", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Stock.ListHandler)))
	mux.Handle("POST /stock", protect(authn, domain.PermissionManageStock, http.HandlerFunc(h.Stock.CreateHandler)))
	mux.Handle("PUT /stock", protect(authn, domain.PermissionManageStock, http.HandlerFunc(h.Stock.UpdateHandler)))
	mux.Handle("DELETE /stock", protect(authn, domain.PermissionManageStock, http.HandlerFunc(h.Stock.DeleteHandler)))

	// --- Pedidos ---
	mux.Handle("GET /order/{id}", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Order.GetHandler)))
	mux.Handle("GET /all/order", protect(authn, domain.PermissionNone, http.HandlerFunc(h.Order.ListHandler)))
	mux.Handle("POST /order", protect(authn, domain.PermissionManageOrders, http.HandlerFunc(h.Order.CreateHandler)))
	mux.Handle("PUT /order", protect(authn, domain.PermissionManageOrders, http.HandlerFunc(h.Order.UpdateHandler)))
	mux.Handle("DELETE /order", protect(authn, domain.PermissionManageOrders, http.HandlerFunc(h.Order.DeleteHandler)))

	// Middleware global: limitador de requisições por IP.
	return middleware.RateLimiter(limit.Cache, limit.MaxRequests, limit.Period)(mux)
}

// protect encadeia autenticação e, quando exigida, a checagem de
// permissão. PermissionNone exige apenas sessão válida.
func protect(authn *middleware.Authenticator, required domain.Permission, next http.Handler) http.Handler {
	if required != domain.PermissionNone {
		next = authn.RequirePermission(required)(next)
	}
	return authn.Authenticate(next)
}

// PingHandler responde o health check da aplicação.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
