package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	geminiadapter "github.com/ericfisherdev/lovejar/internal/adapter/driven/gemini"
	googleadapter "github.com/ericfisherdev/lovejar/internal/adapter/driven/google"
	postgresadapter "github.com/ericfisherdev/lovejar/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/lovejar/internal/adapter/driven/redisbus"
	sqliteadapter "github.com/ericfisherdev/lovejar/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/lovejar/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/lovejar/internal/adapter/driving/web"
	"github.com/ericfisherdev/lovejar/internal/application"
	"github.com/ericfisherdev/lovejar/internal/auth"
	"github.com/ericfisherdev/lovejar/internal/config"
	"github.com/ericfisherdev/lovejar/internal/domain/port/driven"
	"github.com/ericfisherdev/lovejar/internal/metrics"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// stores bundles the persistence adapters selected by LOVEJAR_DB_DRIVER.
type stores struct {
	accounts driven.AccountStore
	jar      driven.JarStore
	close    func() error
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"timezone", cfg.Location.String(),
		"ideas", cfg.HasGenerator(),
		"federation", cfg.HasFederation(),
		"redis", cfg.HasRedis(),
	)
	if cfg.SessionSecretGenerated {
		slog.Warn("LOVEJAR_SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the database and run migrations.
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Optional external adapters. Each stays a nil interface when unconfigured.
	var generator driven.IdeaGenerator
	if cfg.HasGenerator() {
		client, err := geminiadapter.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		generator = client
	} else {
		slog.Info("no gemini API key configured, idea generation disabled")
	}

	var verifier driven.IdentityVerifier
	if cfg.HasFederation() {
		v, err := googleadapter.NewVerifier(cfg.GoogleClientID)
		if err != nil {
			return err
		}
		verifier = v
	}

	var events driven.EventPublisher
	if cfg.HasRedis() {
		client, err := redisbus.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, 10)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				slog.Error("error closing redis", "error", closeErr)
			}
		}()
		events = redisbus.NewPublisher(client)
		slog.Info("publishing partner events", "addr", cfg.RedisAddr, "channel", redisbus.Channel)
	}

	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	// 5. Application services.
	m := metrics.New()
	logger := slog.Default()

	svc := httphandler.Services{
		Partners:  application.NewPartnerService(st.accounts, events, logger, application.WithLinkObserver(m.ObservePartnerLink)),
		Dashboard: application.NewDashboardService(st.accounts, cfg.Location, logger),
		Identity:  application.NewIdentityService(st.accounts, verifier, tokens, logger),
		Jar:       application.NewJarService(st.accounts, st.jar, logger),
		Ideas:     application.NewIdeaService(generator, cfg.IdeasRPS, logger),
	}

	// 6. Register API, web and metrics routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(svc, tokens, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(svc.Dashboard, svc.Jar, svc.Ideas, cfg.SecureCookies, logger))
	mux.Handle("GET /metrics", m.Handler())

	handler := httphandler.ApplyMiddleware(mux, logger, m)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 8. Graceful shutdown with a 10s drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openStores opens the configured database, runs its migrations and returns
// the matching repositories.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgresadapter.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgresadapter.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("database opened", "driver", cfg.DBDriver)
		return &stores{
			accounts: postgresadapter.NewAccountRepo(db),
			jar:      postgresadapter.NewJarRepo(db),
			close:    db.Close,
		}, nil

	default:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("database opened", "driver", cfg.DBDriver, "path", cfg.DBPath)
		return &stores{
			accounts: sqliteadapter.NewAccountRepo(db),
			jar:      sqliteadapter.NewJarRepo(db),
			close:    db.Close,
		}, nil
	}
}
