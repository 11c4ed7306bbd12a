package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diogopimentels/capicash/internal"
	"github.com/diogopimentels/capicash/internal/checkout"
	checkoutpg "github.com/diogopimentels/capicash/internal/checkout/postgres"
	"github.com/diogopimentels/capicash/internal/core/events"
	"github.com/diogopimentels/capicash/internal/gateway"
	"github.com/diogopimentels/capicash/internal/gateway/abacate"
	"github.com/diogopimentels/capicash/internal/gateway/asaas"
	ledgerpg "github.com/diogopimentels/capicash/internal/ledger/postgres"
	productpg "github.com/diogopimentels/capicash/internal/product/postgres"
	"github.com/diogopimentels/capicash/internal/provider"
	providerpg "github.com/diogopimentels/capicash/internal/provider/postgres"
	"github.com/diogopimentels/capicash/internal/transport/rest"
	"github.com/diogopimentels/capicash/internal/webhook"
	"github.com/diogopimentels/capicash/internal/withdrawal"
	withdrawalpg "github.com/diogopimentels/capicash/internal/withdrawal/postgres"
	"github.com/diogopimentels/capicash/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to wire handlers: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger

	var gw gateway.Gateway
	var subAccounts gateway.SubAccountProvider
	switch cfg.Payment.Gateway {
	case "abacate":
		gw = abacate.NewClient(abacate.Config{
			BaseURL:        cfg.Payment.Abacate.APIURL,
			APIKey:         cfg.Payment.Abacate.APIKey,
			RequestTimeout: cfg.Payment.Abacate.Timeout(),
		}, log)
	case "asaas":
		client := asaas.NewClient(asaas.Config{
			BaseURL:        cfg.Payment.Asaas.APIURL,
			APIKey:         cfg.Payment.Asaas.APIKey,
			RequestTimeout: cfg.Payment.Asaas.Timeout(),
		}, deps.EventBus, log)
		gw = client
		subAccounts = client
	default:
		return fmt.Errorf("unknown payment gateway %q", cfg.Payment.Gateway)
	}

	accountRepo := providerpg.NewAccountRepository(deps.GormDB)
	sessionRepo := checkoutpg.NewSessionRepository(deps.GormDB)
	productRepo := productpg.NewProductRepository(deps.GormDB)
	withdrawalRepo := withdrawalpg.NewWithdrawalRepository(deps.GormDB)
	ledgerStore := ledgerpg.NewStore(deps.GormDB)

	provisioner := provider.NewService(accountRepo, subAccounts, cfg.Payment.SandboxMode, log)
	checkoutService := checkout.NewService(sessionRepo, productRepo, gw, provisioner, log)
	withdrawalService := withdrawal.NewService(ledgerStore, withdrawalRepo, provisioner, log)
	reconciler := webhook.NewReconciler(sessionRepo, ledgerStore, deps.EventBus, log)

	deliveryHandler := checkout.NewEventHandler(productRepo, log)
	deliveryHandler.RegisterEventHandlers(deps.EventBus)

	endpoints := map[string]webhook.GatewayEndpoint{
		"asaas": {
			Verifier: webhook.NewSharedSecretVerifier("asaas-access-token", cfg.Payment.Asaas.WebhookSecret),
			Parser:   webhook.ParseAsaasEvent,
		},
		"abacate": {
			Verifier: webhook.NewHMACVerifier("X-Webhook-Signature", cfg.Payment.Abacate.WebhookSecret),
			Parser:   webhook.ParseAbacateEvent,
		},
	}

	checkoutHandler := checkout.NewHandler(checkoutService, log)
	webhookHandler := webhook.NewHandler(reconciler, endpoints, log)
	withdrawalHandler := withdrawal.NewHandler(withdrawalService, log)
	providerHandler := provider.NewHandler(provisioner, log)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, checkoutHandler, webhookHandler, withdrawalHandler, providerHandler, log)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.InitWithConfig(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	log := logger.LoggerWrapper()

	return &Dependencies{
		Config:   config,
		Logger:   log,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(log),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGormDB layers the ORM over the already-open pgx connection pool so
// both share one pool and one set of limits.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}
	return gormDB, nil
}
