package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"iam/internal/config"
	"iam/internal/domain"
	"iam/internal/observability/logging"
	"iam/internal/observability/metrics"
	"iam/internal/observability/middleware"
	"iam/internal/password"
	impl "iam/internal/service/impl"
	"iam/internal/store"
	httpx "iam/internal/transport/http"
	"iam/pkg/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.NewLogger(logging.Config{
		ServiceName: "iam",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	metrics.MustRegister("iam")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}

	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.Role{},
		&domain.Privilege{},
		&domain.RolePrivilege{},
		&domain.UserRole{},
		&domain.Otp{},
		&domain.BlacklistedToken{},
	); err != nil {
		logger.Error("auto migrate", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Seed(ctx, gdb); err != nil {
		logger.Error("seed", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	tokens := impl.NewTokenServiceHS256(impl.TokenConfig{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}, st.Blacklist())

	otps := impl.NewOtpService(impl.OtpConfig{
		Expiry:      cfg.OtpExpiry,
		DailyLimit:  cfg.OtpDailyLimit,
		MaxAttempts: cfg.OtpMaxAttempts,
	}, st.Otps())

	hasher := password.NewHasher()

	auth := impl.NewAuthService(st.Users(), st.Roles(), otps, tokens, hasher)
	roles := impl.NewRoleService(st.Roles(), st.Users(), tokens)
	privileges := impl.NewPrivilegeService(st.Privileges(), st.Roles())
	users := impl.NewUserService(st.Users())

	mux := httpx.NewRouter(httpx.RouterConfig{
		Auth:        auth,
		Users:       users,
		Roles:       roles,
		Privileges:  privileges,
		Tokens:      tokens,
		UserStore:   st.Users(),
		CORSOrigins: cfg.CORSOrigins,
	})

	// Periodically drop blacklist entries past their horizon. Lookups check
	// expiry themselves; this only keeps the table small.
	go func() {
		ticker := time.NewTicker(cfg.BlacklistSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := st.Blacklist().Cleanup(ctx)
				if err != nil {
					slog.Error("blacklist cleanup", "error", err)
					continue
				}
				if n > 0 {
					slog.Info("blacklist cleanup", "removed", n)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           middleware.WithRequestAndTrace(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("iam service listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
