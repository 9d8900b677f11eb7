package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"waterBuddyAPI/handlers"
	"waterBuddyAPI/internal/config"
	"waterBuddyAPI/internal/kv"
	"waterBuddyAPI/middleware"
	"waterBuddyAPI/services"
)

// app holds the wired services of one tracker instance.
type app struct {
	recordService     *services.RecordService
	progressService   *services.ProgressService
	dailyService      *services.DailyService
	statisticsService *services.StatisticsService
	reminderService   *services.ReminderService
	dispatcher        *services.ReminderDispatcher
}

func newApp(store kv.Store, loc *time.Location) *app {
	recordService := services.NewRecordService(store)
	progressService := services.NewProgressService(store)
	dailyService := services.NewDailyService(store, recordService, progressService, loc)
	statisticsService := services.NewStatisticsService(recordService, dailyService)

	dispatcher := services.NewReminderDispatcher(loc)
	reminderService := services.NewReminderService(store, dispatcher)
	dispatcher.SetTokenSource(reminderService)

	return &app{
		recordService:     recordService,
		progressService:   progressService,
		dailyService:      dailyService,
		statisticsService: statisticsService,
		reminderService:   reminderService,
		dispatcher:        dispatcher,
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newRouter(a *app, store kv.Store, cfg config.AppConfig, limiter *middleware.RateLimiter) *mux.Router {
	waterHandler := handlers.NewWaterHandler(a.dailyService, a.recordService)
	progressHandler := handlers.NewProgressHandler(a.progressService)
	statisticsHandler := handlers.NewStatisticsHandler(a.statisticsService)
	reminderHandler := handlers.NewReminderHandler(a.reminderService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	if limiter != nil {
		standardRouter.Use(limiter.Middleware)
	}
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass, promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret, http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if p, ok := store.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy", "error": "storage connection failed"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "waterBuddy-api"}`))
	}).Methods("GET")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/today", waterHandler.GetToday).Methods("GET")
	api.HandleFunc("/water", waterHandler.AddWater).Methods("POST")
	api.HandleFunc("/water/today", waterHandler.ResetToday).Methods("DELETE")
	api.HandleFunc("/records", waterHandler.GetRecords).Methods("GET")
	api.HandleFunc("/goal", waterHandler.GetGoal).Methods("GET")
	api.HandleFunc("/goal", waterHandler.UpdateGoal).Methods("PUT")

	api.HandleFunc("/progress", progressHandler.GetProgress).Methods("GET")
	api.HandleFunc("/achievements", progressHandler.GetAchievements).Methods("GET")

	api.HandleFunc("/statistics", statisticsHandler.GetStatistics).Methods("GET")
	api.HandleFunc("/calendar", statisticsHandler.GetCalendar).Methods("GET")

	api.HandleFunc("/reminders", reminderHandler.GetReminders).Methods("GET")
	api.HandleFunc("/reminders", reminderHandler.AddReminder).Methods("POST")
	api.HandleFunc("/reminders/settings", reminderHandler.GetSettings).Methods("GET")
	api.HandleFunc("/reminders/settings", reminderHandler.UpdateSettings).Methods("PUT")
	api.HandleFunc("/reminders/{id}/toggle", reminderHandler.ToggleReminder).Methods("PUT")
	api.HandleFunc("/reminders/{id}", reminderHandler.DeleteReminder).Methods("DELETE")

	api.HandleFunc("/devices", reminderHandler.RegisterDevice).Methods("POST")

	return r
}
