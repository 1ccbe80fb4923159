package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/attendance-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cache"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/retry"
	"github.com/cmlabs-hris/attendance-engine-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-engine-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/attendance-engine-go/internal/service/notification"
	scheduleService "github.com/cmlabs-hris/attendance-engine-go/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)

	engineClock := clock.New()
	thresholds := cfg.Engine.Thresholds

	windowManager := scheduleService.NewWindowManager(thresholds)
	windowCalculator := scheduleService.NewWindowCalculator(thresholds)

	statusCache := cache.New[attendance.StatusResponse](cfg.Cache.StatusTTL, engineClock)
	notifier := notificationService.NewSlogNotifier(nil)

	queue := attendanceService.NewProcessingQueue(
		engineClock,
		retry.Policy{
			MaxAttempts:    cfg.Queue.RetryAttempts,
			InitialBackoff: cfg.Queue.InitialBackoff,
			MaxBackoff:     cfg.Queue.MaxBackoff,
		},
		cfg.Queue.UnitBudget,
		cfg.Queue.DedupeWindow,
	)

	engine := attendanceService.NewEngineService(
		attendanceRepo,
		shiftRepo,
		overtimeRepo,
		windowManager,
		queue,
		statusCache,
		notifier,
		engineClock,
		thresholds,
	)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceHandler := appHTTP.NewAttendanceHandler(engine)
	router := appHTTP.NewRouter(jwtService, attendanceHandler, cfg.App.Env)

	// Background jobs: expired-cache janitor plus the attendance sweeps.
	janitorCtx, cancelJanitor := context.WithCancel(context.Background())
	defer cancelJanitor()
	go statusCache.Run(janitorCtx, cfg.Cache.SweepInterval)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(
		attendanceRepo,
		shiftRepo,
		overtimeRepo,
		windowCalculator,
		notifier,
		engineClock,
		db,
	)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	server := &http.Server{Addr: port, Handler: router}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	if err := server.Shutdown(context.Background()); err != nil {
		fmt.Println("Shutdown error:", err)
	}
}
