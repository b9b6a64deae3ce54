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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"food_store/internal/app"
	"food_store/internal/config"
	"food_store/internal/pkg/logger"
	"food_store/internal/pkg/security"
	"food_store/internal/service"
	"food_store/internal/session"
	"food_store/internal/storage"
)

func openStorage(l *logger.Logger) (storage.Storage, error) {
	switch config.CredentialsBackend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendFile:
		var sealer *security.Sealer
		if config.CredentialsKey != "" {
			sealer = security.NewSealer(config.CredentialsKey)
		}
		return storage.NewFile(config.CredentialsFile, sealer, l), nil
	case config.BackendPostgres:
		return storage.NewPostgreSQL(config.DatabaseURI, l)
	case config.BackendRedis:
		return storage.NewRedis(config.RedisURL, l)
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", config.CredentialsBackend)
	}
}

func main() {
	var l *logger.Logger
	var err error
	if l, err = logger.CreateLogger(config.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	db, err := openStorage(l)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := app.NewApp(config.APIBaseURL, db, l,
		session.WithTimeout(config.RequestTimeout),
		session.WithRateLimit(config.BackendRateLimit, config.BackendRateBurst),
		session.WithMetrics(session.NewMetrics(reg)),
	)
	if err := app.Restore(context.Background()); err != nil {
		l.Warn("stored session not restored", zap.Error(err))
	}

	service := service.NewService(app, config.ServerRunAddress, reg, l)

	const readHeaderTimeout = 5 * time.Second
	server := &http.Server{Addr: config.ServerRunAddress, Handler: service.NewRouter(), ReadHeaderTimeout: readHeaderTimeout}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		const shutdownTimeout = 30 * time.Second
		shutdownCtx, cancel := context.WithTimeout(serverCtx, shutdownTimeout)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	l.Info("storefront listening", zap.String("address", config.ServerRunAddress), zap.String("backend", config.APIBaseURL))
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		db.Close()
		log.Fatal(err)
	}

	<-serverCtx.Done()
}
