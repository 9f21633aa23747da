package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rd "github.com/redis/go-redis/v9"

	"storefront/internal/application/audit"
	appcatalog "storefront/internal/application/catalog"
	appform "storefront/internal/application/form"
	"storefront/internal/application/reconcile"
	"storefront/internal/config"
	"storefront/internal/domain/notify"
	"storefront/internal/infrastructure/gateway"
	httptransport "storefront/internal/infrastructure/http"
	"storefront/internal/infrastructure/notifier"
	"storefront/internal/infrastructure/observability/oteltrace"
	"storefront/internal/infrastructure/observability/prometrics"
	"storefront/internal/infrastructure/observability/telemetry"
	"storefront/internal/infrastructure/observability/zaplogger"
	"storefront/internal/infrastructure/outbox"
	"storefront/internal/infrastructure/storage"
	"storefront/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)
	defer func() {
		if s, ok := logger.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()

	reg := prometrics.New("", "")
	tracer := oteltrace.New(cfg.ServiceName)
	tel := telemetry.New(tracer, logger, reg)
	log := tel.Logger()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Error("db_open_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}
	if err := storage.AutoMigrate(db); err != nil {
		log.Error("db_migrate_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}

	productRepo := storage.NewProductRepository(db)
	formRepo := storage.NewFormRepository(db)
	txRepo := storage.NewTransactionRepository(db)
	stockLedger := storage.NewLedger(db)

	bus := outbox.NewBus(log)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	auditWorker := audit.New(bus, tel)
	auditWorker.Start()

	gw := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayShopID, cfg.GatewaySecretKey, cfg.GatewayTimeout)

	var customerNotify notify.Notifier
	if cfg.SMTPAddr != "" {
		customerNotify = notifier.NewSMTP(cfg.SMTPAddr, cfg.MailFrom, log)
	} else {
		customerNotify = notifier.NewLog(log)
	}

	engine := reconcile.New(
		formRepo,
		productRepo,
		txRepo,
		stockLedger,
		gw,
		customerNotify,
		bus,
		tel,
		cfg.PaymentReturnURL,
	)
	formService := appform.NewService(formRepo, productRepo, log)
	productService := appcatalog.NewService(productRepo, log)

	var rdb *rd.Client
	if cfg.RedisAddr != "" {
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer func() { _ = rdb.Close() }()
	}

	handler := httptransport.NewHandler(engine, formService, productService)
	router := httptransport.NewRouter(handler, tel, httptransport.RouterOptions{
		Redis:         rdb,
		PayRateLimit:  cfg.PayRateLimit,
		PayRateWindow: cfg.PayRateWindow,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("http_server_start",
			observability.F("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		log.Info("http_server_stopped")
	}
}
