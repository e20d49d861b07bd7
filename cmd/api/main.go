package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/signcore/service-auth-go/internal/account"
	accountrepo "github.com/signcore/service-auth-go/internal/account/repo"
	"github.com/signcore/service-auth-go/internal/audit"
	auditrepo "github.com/signcore/service-auth-go/internal/audit/repo"
	"github.com/signcore/service-auth-go/internal/router"
	"github.com/signcore/service-auth-go/internal/session"
	sessionrepo "github.com/signcore/service-auth-go/internal/session/repo"
	"github.com/signcore/service-auth-go/pkg/database"
	"github.com/signcore/service-auth-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-auth-go")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	sessionCfg := session.ConfigFromEnv()
	if sessionCfg.Secret == "" {
		sugar.Fatal("JWT_SECRET is required")
	}

	// repositories
	accounts := accountrepo.NewAccountRepo(sqlxDB)
	audits := auditrepo.NewAuditRepo(sqlxDB)
	revocations := sessionrepo.NewRevocationRepo(sqlxDB)

	setupCtx, setupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer setupCancel()
	for _, ensure := range []func(context.Context) error{
		accounts.EnsureTable, audits.EnsureTable, revocations.EnsureTable,
	} {
		if err := ensure(setupCtx); err != nil {
			sugar.Fatalf("ensure table: %v", err)
		}
	}

	// services and handlers
	auditSvc := audit.NewService(audits, sugar)
	accountSvc := account.NewService(accounts, nil)
	issuer := session.NewIssuer([]byte(sessionCfg.Secret), sessionCfg.TTL)
	sessionSvc := session.NewService(accounts, revocations, auditSvc, issuer, nil)

	handler := router.RegisterRoutes(router.Deps{
		Logger:   sugar,
		DB:       sqlxDB,
		Accounts: account.NewHandler(accountSvc, sugar),
		Sessions: session.NewHandler(sessionSvc, sugar),
		Audits:   audit.NewHandler(auditSvc, sugar),
		Auth:     sessionSvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8089"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: handler,
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("service is running", "port", port)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// clear revocations for tokens that have expired on their own
	if n, err := revocations.PurgeExpired(doneCtx); err != nil {
		sugar.Warnf("purge revocations on shutdown failed: %v", err)
	} else if n > 0 {
		sugar.Infow("purged expired revocations", "count", n)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
