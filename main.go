package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"

	"waterBuddyAPI/internal/config"
	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/internal/notification"
	"waterBuddyAPI/middleware"
	"waterBuddyAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	backend, err := kv.Open(ctx, kv.Options{
		Driver:         cfg.StorageDriver,
		DatabasePath:   cfg.DatabasePath,
		DatabaseURL:    cfg.DatabaseURL,
		RedisURL:       cfg.RedisURL,
		RedisKeyPrefix: cfg.RedisKeyPrefix,
	})
	cancel()
	if err != nil {
		log.Fatal("Failed to open storage:", err)
	}
	defer func() {
		log.Println("Closing storage...")
		if err := backend.Close(); err != nil {
			log.Printf("Storage close error: %v", err)
		}
	}()
	log.Printf("Storage ready (driver=%s)", cfg.StorageDriver)

	middleware.InitPrometheus()

	app := newApp(backend, cfg.Location)

	fcmCtx, fcmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	fcmService, err := notification.NewFCMService(fcmCtx, cfg.FCMCredentialsFile)
	fcmCancel()
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		app.dispatcher.SetPushProvider(services.LogPushProvider{})
	} else {
		app.dispatcher.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	app.dispatcher.Start()
	defer app.dispatcher.Stop()

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), 10*time.Second)
	restored, err := app.reminderService.Restore(restoreCtx)
	restoreCancel()
	if err != nil {
		log.Printf("Warning: Could not restore reminders: %v", err)
	} else {
		log.Printf("Restored %d reminders", restored)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go limiter.CleanupVisitors(stopCleanup)

	r := newRouter(app, backend, cfg, limiter)

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
