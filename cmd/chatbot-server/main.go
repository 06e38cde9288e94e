// cmd/chatbot-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vendor-portal-chatbot/internal/chat/router"
	"vendor-portal-chatbot/internal/common/config"
	"vendor-portal-chatbot/internal/common/database"
	"vendor-portal-chatbot/internal/common/logger"
	"vendor-portal-chatbot/internal/common/observability"
	"vendor-portal-chatbot/internal/notify"
	"vendor-portal-chatbot/internal/server"
	"vendor-portal-chatbot/internal/store/faqstore"
	"vendor-portal-chatbot/internal/store/invoicestore"
	"vendor-portal-chatbot/internal/store/transcript"
	"vendor-portal-chatbot/internal/store/vendorstore"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	// Bootstrap logger for config loading; rebuilt from cfg.Logging below.
	zapLog := logger.New("info", "console")

	zapLog.Info("Starting chatbot server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	obs := observability.New("chatbot-server")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("chatbot-server", cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	vendors := vendorstore.New(pg.GetDB(), log)
	invoices := invoicestore.New(pg.GetDB(), log)
	faqs := faqstore.New(esClient.Client, cfg.Database.Elasticsearch.FAQIndex, log)
	transcripts := transcript.New(
		redisClient.GetClient(),
		time.Duration(cfg.Chat.TranscriptTTL)*time.Second,
		log,
	)

	// --- Notifier ---
	notifier, err := notify.New(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier init failed", zap.Error(err))
	}

	// --- Router ---
	chatRouter := router.New(router.Deps{
		Vendors:     vendors,
		Invoices:    invoices,
		FAQs:        faqs,
		Transcripts: transcripts,
		Notifier:    notifier,
		Config:      cfg.Chat,
		Logger:      log,
	})

	// --- HTTP Server ---
	srv, err := server.New(server.Options{
		Chat:         chatRouter,
		History:      transcripts,
		Obs:          obs,
		Tracing:      tracing,
		Config:       cfg.Server,
		HistoryLimit: cfg.Chat.HistoryLimit,
		Logger:       log,
	})
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()
	zapLog.Info("Chatbot server listening", zap.String("addr", cfg.Server.Addr()))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Chatbot server stopped gracefully")
}
