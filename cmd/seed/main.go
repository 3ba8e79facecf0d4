package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"parley/internal/auth"
	"parley/internal/config"
	"parley/internal/domain/repositories"
	"parley/internal/repository/gormstore"
	"parley/internal/repository/postgres"
	postgresLLM "parley/internal/repository/postgres/llm"
	"parley/internal/seed"
	authSvc "parley/internal/service/auth"
	chatSvc "parley/internal/service/chat"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the chats table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't create the demo user or chat")
	email := flag.String("email", "demo@parley.local", "Demo user email")
	password := flag.String("password", "parley-demo-password", "Demo user password (used only when the user is created)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("seeding",
		zap.String("environment", cfg.Environment),
		zap.String("table_prefix", cfg.TablePrefix),
		zap.String("store_driver", cfg.StoreDriver))

	chatRepo, txManager, closeStore := prepareStore(ctx, cfg, *dropTables, logger)
	defer closeStore()

	if *schemaOnly {
		logger.Info("schema setup complete (schema-only mode)")
		return
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		logger.Fatal("SUPABASE_URL and SUPABASE_KEY are required to create the demo user")
	}
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
	userID, err := admin.EnsureUser(ctx, *email, *password)
	if err != nil {
		logger.Fatal("failed to ensure demo user", zap.Error(err))
	}
	logger.Info("demo user ready", zap.String("email", *email), zap.String("user_id", userID))

	chats := chatSvc.NewService(chatRepo, authSvc.NewOwnerBasedAuthorizer(chatRepo), txManager, cfg.StoreTimeout, logger)
	chat, err := seed.NewChatSeeder(chats, logger).SeedDemoChat(ctx, userID)
	if err != nil {
		logger.Fatal("failed to seed demo chat", zap.Error(err))
	}

	logger.Info("seeding complete", zap.String("chat_id", chat.ID))
}

// prepareStore drops (when asked) and creates the chats table for the
// configured driver, then returns a repository over it
func prepareStore(ctx context.Context, cfg *config.Config, drop bool, logger *zap.Logger) (repositories.ChatRepository, repositories.TransactionManager, func()) {
	switch cfg.StoreDriver {
	case gormstore.DriverSQLite, gormstore.DriverPostgres:
		dsn := cfg.SupabaseDBURL
		if cfg.StoreDriver == gormstore.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		if drop {
			logger.Warn("--drop-tables ignored for gorm drivers; delete the database instead")
		}
		db, table, err := gormstore.Open(ctx, cfg.StoreDriver, dsn, cfg.TablePrefix, logger)
		if err != nil {
			logger.Fatal("failed to open store", zap.Error(err))
		}
		return gormstore.NewChatRepository(db, table), gormstore.NewTransactionManager(db), func() { _ = gormstore.Close(db) }

	default:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)

		if drop {
			if err := postgres.DropSchema(ctx, pool, tables); err != nil {
				logger.Fatal("failed to drop tables", zap.Error(err))
			}
			logger.Info("tables dropped", zap.String("chats", tables.Chats))
		}
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			logger.Fatal("failed to run schema", zap.Error(err))
		}
		logger.Info("schema ready", zap.String("chats", tables.Chats))

		repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
		return postgresLLM.NewChatRepository(repoConfig), postgres.NewTransactionManager(pool, logger), pool.Close
	}
}
