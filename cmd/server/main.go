package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/b2bmarket/backend/internal/application/billing"
	notificationapp "github.com/b2bmarket/backend/internal/application/notification"
	quotingapp "github.com/b2bmarket/backend/internal/application/quoting"
	ratingapp "github.com/b2bmarket/backend/internal/application/rating"
	tradeapp "github.com/b2bmarket/backend/internal/application/trade"
	"github.com/b2bmarket/backend/internal/infrastructure/auth"
	"github.com/b2bmarket/backend/internal/infrastructure/cache"
	"github.com/b2bmarket/backend/internal/infrastructure/config"
	"github.com/b2bmarket/backend/internal/infrastructure/event"
	"github.com/b2bmarket/backend/internal/infrastructure/logger"
	"github.com/b2bmarket/backend/internal/infrastructure/notification"
	"github.com/b2bmarket/backend/internal/infrastructure/persistence"
	"github.com/b2bmarket/backend/internal/infrastructure/scheduler"
	"github.com/b2bmarket/backend/internal/interfaces/http/handler"
	"github.com/b2bmarket/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	// Event plumbing: events staged in the outbox inside each transaction,
	// drained by the processor onto the in-process bus.
	serializer := event.NewEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)
	eventBus := event.NewInMemoryEventBus(log)

	// Repositories
	rfqRepo := persistence.NewGormRFQRepository(db.DB)
	quoteRepo := persistence.NewGormQuoteRepository(db.DB, outboxPublisher)
	revisionRepo := persistence.NewGormQuoteRevisionRepository(db.DB)
	quoteEventRepo := persistence.NewGormQuoteEventRepository(db.DB)
	rfqEventRepo := persistence.NewGormRFQEventRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB, outboxPublisher)
	orderAuditRepo := persistence.NewGormOrderAuditRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, outboxPublisher)
	invoiceEventRepo := persistence.NewGormInvoiceEventRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	performanceRepo := persistence.NewGormSellerPerformanceRepository(db.DB)

	sequences := persistence.NewDBSequenceAllocator(db.DB, log)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Party directory: static until the platform directory service is wired,
	// fronted by the Redis cache either way.
	var parties tradeapp.PartyDirectory = cache.NewStaticPartyDirectory()
	partyCache := cache.NewCachedPartyDirectory(cfg.Redis, parties, log)
	defer partyCache.Close()
	parties = partyCache

	// Application services
	quoteService := quotingapp.NewQuoteService(quoteRepo, rfqRepo, revisionRepo, quoteEventRepo, rfqEventRepo, sequences, log)
	orderService := tradeapp.NewOrderService(orderRepo, quoteRepo, orderAuditRepo, txScope, parties, sequences, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, invoiceEventRepo, paymentRepo, orderRepo, parties, sequences, log)
	ratingService := ratingapp.NewRatingService(performanceRepo)

	// Outbox consumers
	notifier := notification.NewLogNotifier(log)
	eventBus.Subscribe(billingapp.NewOrderConfirmedHandler(invoiceService, invoiceRepo, log))
	eventBus.Subscribe(billingapp.NewOrderDeliveredHandler(invoiceService, invoiceRepo, log))
	eventBus.Subscribe(ratingapp.NewOrderClosedHandler(performanceRepo, log))
	eventBus.Subscribe(notificationapp.NewEventHandler(notifier, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var outboxProcessor *event.OutboxProcessor
	if cfg.Outbox.ProcessorEnabled {
		outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, event.OutboxProcessorConfig{
			BatchSize:        cfg.Outbox.BatchSize,
			PollInterval:     cfg.Outbox.PollInterval,
			CleanupRetention: cfg.Outbox.CleanupRetention,
			CleanupInterval:  cfg.Outbox.CleanupInterval,
		}, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("failed to start outbox processor", zap.Error(err))
		}
	}

	var reconciler *scheduler.Reconciler
	if cfg.Reconcile.Enabled {
		reconciler = scheduler.NewReconciler(quoteService, invoiceService, cfg.Reconcile, log)
		reconciler.Start(ctx)
	}

	tokens := auth.NewTokenService(cfg.JWT)
	engine := router.New(cfg, tokens, router.Handlers{
		Quotes:   handler.NewQuoteHandler(quoteService),
		Orders:   handler.NewOrderHandler(orderService),
		Invoices: handler.NewInvoiceHandler(invoiceService),
		Ratings:  handler.NewRatingHandler(ratingService),
	}, log)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if reconciler != nil {
		if err := reconciler.Stop(shutdownCtx); err != nil {
			log.Error("reconciler shutdown failed", zap.Error(err))
		}
	}
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Error("outbox processor shutdown failed", zap.Error(err))
		}
	}

	log.Info("shutdown complete")
}
