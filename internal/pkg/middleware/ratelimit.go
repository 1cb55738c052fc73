package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"govendas/internal/pkg/cache"
)

// RateLimiter limita requisições por IP usando um contador no Redis com
// expiração fixa. O limite é compartilhado entre instâncias da API.
func RateLimiter(client cache.Client, limit int, duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, _ := net.SplitHostPort(r.RemoteAddr)
			key := "rate-limit:" + ip
			ctx := context.Background()

			count, err := client.GetInt(ctx, key)
			if err == cache.ErrCacheMiss {
				client.Set(ctx, key, 1, duration)
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-1))
				next.ServeHTTP(w, r)
				return
			} else if err != nil {
				// Cache indisponível não deve derrubar a API inteira;
				// deixa a requisição passar sem contar.
				next.ServeHTTP(w, r)
				return
			}

			if count >= limit {
				http.Error(w, "Limite de requisições excedido. Tente novamente em instantes.", http.StatusTooManyRequests)
				return
			}

			client.Incr(ctx, key)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
