package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"govendas/config"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/database"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/middleware"
	"govendas/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"govendas/internal/api/auth"
	"govendas/internal/api/client"
	"govendas/internal/api/order"
	"govendas/internal/api/router"
	"govendas/internal/api/stock"
	"govendas/internal/api/user"
	"govendas/internal/repository/clientrepo"
	"govendas/internal/repository/orderrepo"
	"govendas/internal/repository/stockrepo"
	"govendas/internal/repository/userrepo"
	"govendas/internal/service/clientservice"
	"govendas/internal/service/orderservice"
	"govendas/internal/service/stockservice"
	"govendas/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	stdlog.Println("⚡ Inicializando serviço GoVendas...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	// Se ele não existir, seguimos em frente: as variáveis essenciais
	// podem estar no ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		stdlog.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	// O cache é acelerador, não fonte de verdade: um Redis fora do ar
	// na subida não impede a API de funcionar.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Warn("Redis indisponível na inicialização; seguindo sem cache aquecido.", map[string]interface{}{"error": err.Error()})
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	clientRepo := clientrepo.NewClientRepository(db, cfg.DBTimeout, log)
	stockRepo := stockrepo.NewStockRepository(db, cacheClient, cfg.CacheTTL, cfg.DBTimeout, log)
	ledger := stockrepo.NewLedger(log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, ledger, stockRepo, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	userSvc := userservice.NewService(userRepo, tokenSvc, cfg.BcryptCost, log)
	clientSvc := clientservice.NewService(clientRepo, log)
	stockSvc := stockservice.NewService(stockRepo, log)
	orderSvc := orderservice.NewService(orderRepo, log)
	log.Debug("Serviços inicializados.", nil)

	// C. Handlers (Camada de Apresentação)
	handlers := router.Handlers{
		Auth:   auth.NewHandler(userSvc, cfg.TokenExpiry, log),
		User:   user.NewHandler(userSvc, cfg.TokenExpiry, log),
		Client: client.NewHandler(clientSvc, log),
		Stock:  stock.NewHandler(stockSvc, log),
		Order:  order.NewHandler(orderSvc, log),
	}
	log.Debug("Handlers inicializados.", nil)

	// D. Autenticação: o middleware valida o token da sessão e confere
	// a existência e as permissões do usuário no banco a cada requisição.
	authn := middleware.NewAuthenticator(tokenSvc, userRepo, log)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(handlers, authn, router.RateLimit{
		Cache:       cacheClient,
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoVendas ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
