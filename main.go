package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"octoboard/config"
	"octoboard/handlers"
	"octoboard/internal/database"
	"octoboard/services/github"
	"octoboard/services/stats"
	"octoboard/utils"
)

func main() {
	configPath := os.Getenv("OCTOBOARD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	configManager := config.NewManager(configPath)
	settings, err := configManager.Load()
	if err != nil {
		log.Fatalf("[main] load config: %v", err)
	}

	if settings.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   settings.Log.File,
			MaxSize:    settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
			MaxAge:     settings.Log.MaxAgeDays,
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	db, err := database.NewDB(database.Config{DatabasePath: settings.Database.Path})
	if err != nil {
		log.Fatalf("[main] open database: %v", err)
	}
	defer db.Close()

	service := stats.NewService(db.Profiles, db.Snapshots, github.NewClient())
	scheduler := stats.NewScheduler(service, time.Duration(settings.Sync.IntervalMinutes)*time.Minute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go scheduler.Start(ctx)

	statsHandler := handlers.NewStatsHandler(service)
	adminHandler := handlers.NewAdminHandler(db.Profiles, service, settings.Admin.APIKey)

	router := utils.NewRouter()
	router.HandleFunc("/stats/{profileID}", statsHandler.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/configs", statsHandler.ListConfigs).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(adminHandler.RequireKey)
	api.HandleFunc("/profiles", adminHandler.ListProfiles).Methods(http.MethodGet)
	api.HandleFunc("/profiles", adminHandler.CreateProfile).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{profileID}", adminHandler.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profiles/{profileID}", adminHandler.DeleteProfile).Methods(http.MethodDelete)
	api.HandleFunc("/profiles/{profileID}/sync", adminHandler.SyncNow).Methods(http.MethodPost)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", settings.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
