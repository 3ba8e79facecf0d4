package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parley/internal/auth"
	"parley/internal/capabilities"
	"parley/internal/config"
	"parley/internal/domain/repositories"
	"parley/internal/handler"
	"parley/internal/middleware"
	"parley/internal/observability"
	"parley/internal/persona"
	"parley/internal/repository/gormstore"
	"parley/internal/repository/postgres"
	postgresLLM "parley/internal/repository/postgres/llm"
	authSvc "parley/internal/service/auth"
	chatSvc "parley/internal/service/chat"
	serviceLLM "parley/internal/service/llm"
	"parley/internal/service/llm/generation"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.String("table_prefix", cfg.TablePrefix),
		zap.String("auth_mode", cfg.AuthMode),
		zap.String("store_driver", cfg.StoreDriver),
	)

	shutdownTracer, err := observability.InitTracer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	verifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create identity verifier: %w", err)
	}
	defer verifier.Close()

	chatRepo, txManager, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open chat store: %w", err)
	}
	defer closeStore()

	catalog, err := capabilities.NewRegistry()
	if err != nil {
		return fmt.Errorf("initialize capability registry: %w", err)
	}

	p, err := persona.Load(cfg.PersonaFile)
	if err != nil {
		return err
	}

	llmSetup, err := serviceLLM.SetupGenerator(cfg, catalog, p, logger)
	if err != nil {
		return fmt.Errorf("setup generator: %w", err)
	}

	authorizer := authSvc.NewOwnerBasedAuthorizer(chatRepo)
	chatService := chatSvc.NewService(chatRepo, authorizer, txManager, cfg.StoreTimeout, logger)
	generationService := generation.NewService(llmSetup.Generator, authorizer, cfg.StoreTimeout, cfg.GenerationTimeout, logger)

	router := handler.NewRouter(handler.Handlers{
		Chat:     handler.NewChatHandler(chatService, logger),
		Generate: handler.NewGenerateHandler(generationService, logger),
		Models: handler.NewModelsHandler(handler.ActiveModel{
			Provider: llmSetup.Model.Provider,
			Model:    llmSetup.Model.Model,
			Persona:  p.Name,
		}, catalog, logger),
	})

	// Order: CORS → Recovery → RequestLog → Auth → Routes
	// CORS must be before auth to handle OPTIONS pre-flight requests
	root := middleware.Chain(router,
		middleware.CORS(cfg.CORSOrigins),
		middleware.Recovery(logger),
		middleware.RequestLog(logger),
		middleware.AuthMiddleware(verifier, logger, handler.HealthPath),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newVerifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (auth.IdentityVerifier, error) {
	switch cfg.AuthMode {
	case "remote":
		return auth.NewTokenResolver(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.AuthTimeout, logger)
	case "jwks":
		return auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, logger)
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q (want remote or jwks)", cfg.AuthMode)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.ChatRepository, repositories.TransactionManager, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.CheckSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		return postgresLLM.NewChatRepository(repoConfig), postgres.NewTransactionManager(pool, logger), pool.Close, nil

	case gormstore.DriverSQLite, gormstore.DriverPostgres:
		dsn := cfg.SupabaseDBURL
		if cfg.StoreDriver == gormstore.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		db, table, err := gormstore.Open(ctx, cfg.StoreDriver, dsn, cfg.TablePrefix, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		closeDB := func() {
			if err := gormstore.Close(db); err != nil {
				logger.Warn("close store", zap.Error(err))
			}
		}
		return gormstore.NewChatRepository(db, table), gormstore.NewTransactionManager(db), closeDB, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
