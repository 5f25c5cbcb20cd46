package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"scoutpay/internal/audit"
	"scoutpay/internal/onboarding/handler"
	"scoutpay/internal/onboarding/metrics"
	"scoutpay/internal/onboarding/session"
	"scoutpay/internal/platform/config"
	"scoutpay/internal/platform/database"
	"scoutpay/internal/platform/health"
	"scoutpay/internal/platform/httpserver"
	"scoutpay/internal/platform/logger"
	"scoutpay/internal/profile/client"
	"scoutpay/internal/profile/store"
	"scoutpay/internal/verification/channels/bankaccount"
	"scoutpay/internal/verification/channels/business"
	"scoutpay/internal/verification/channels/bvn"
	"scoutpay/internal/verification/channels/nin"
	"scoutpay/internal/verification/tracer"
	"scoutpay/pkg/platform/middleware/auth"
	"scoutpay/pkg/platform/middleware/request"
)

// main wires the verification channels, stores, and the session engine into
// the HTTP router, then runs the server until a shutdown signal. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing scoutpay onboarding gateway",
		"addr", cfg.Addr,
		"identity_service", cfg.IdentityServiceURL,
		"registry_service", cfg.RegistryServiceURL,
		"wallet_service", cfg.WalletServiceURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Verification channels.
	bvnChannel := bvn.NewClient(cfg.IdentityServiceURL, cfg.IdentityAPIKey, cfg.CallTimeout, bvn.WithLogger(log))
	ninChannel := nin.NewClient(cfg.IdentityServiceURL, cfg.IdentityAPIKey, cfg.CallTimeout, nin.WithLogger(log))
	bankChannel := bankaccount.NewClient(cfg.IdentityServiceURL, cfg.IdentityAPIKey, cfg.CallTimeout)
	businessChannel := business.NewClient(cfg.RegistryServiceURL, cfg.RegistryAPIKey, cfg.CallTimeout, business.WithLogger(log))

	profiles := client.New(cfg.WalletServiceURL, cfg.WalletAPIKey, cfg.CallTimeout)

	healthHandler := health.NewHandler(5 * time.Second)
	healthHandler.RegisterCheck("identity_service", bvnChannel.Health)
	healthHandler.RegisterCheck("business_registry", businessChannel.Health)

	// Wallet flag store: postgres when configured, then redis, else in-memory.
	// Postgres also makes the audit trail durable.
	var flags store.Store
	auditStore := audit.Store(audit.NewInMemoryStore())
	switch {
	case cfg.PostgresURL != "":
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.PostgresURL
		pool, err := database.Connect(ctx, dbCfg)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		healthHandler.RegisterCheck("postgres", pool.Health)
		flags = store.NewPostgres(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())
		log.Info("using postgres wallet flag store")
	case cfg.RedisURL != "":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid redis url", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		healthHandler.RegisterCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		flags = store.NewRedis(rdb)
		log.Info("using redis wallet flag store")
	default:
		flags = store.NewMemory()
		log.Warn("using in-memory wallet flag store; flags are lost on restart")
	}

	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	sessions := session.NewManager(session.Deps{
		Channels: session.Channels{
			BVN:         bvnChannel,
			NIN:         ninChannel,
			BankAccount: bankChannel,
			Business:    businessChannel,
		},
		Profiles: profiles,
		Flags:    flags,
		Audit:    auditPublisher,
		Metrics:  metrics.New(),
		Tracer:   tracer.NewOTel(),
		Logger:   log,
		Config: session.Config{
			DigitDebounce:    cfg.DigitDebounce,
			BusinessDebounce: cfg.BusinessDebounce,
			CallTimeout:      cfg.CallTimeout,
			OTPSessionTTL:    cfg.OTPSessionTTL,
		},
	}, cfg.SessionIdleTTL)
	defer sessions.Close()

	onboarding := handler.New(sessions, flags, log)
	tokenValidator := auth.NewHMACValidator(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(request.Recovery(log))
	router.Use(request.RequestID)
	router.Use(request.Logger(log))

	router.Method(http.MethodGet, "/health", healthHandler)
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(auth.Require(tokenValidator, log))
		onboarding.Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")
	if err := httpserver.Shutdown(srv, 10*time.Second); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
