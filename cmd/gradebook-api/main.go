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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gradebook-api/api/swagger"
	"github.com/noah-isme/gradebook-api/internal/handler"
	"github.com/noah-isme/gradebook-api/internal/middleware"
	"github.com/noah-isme/gradebook-api/internal/repository"
	"github.com/noah-isme/gradebook-api/internal/service"
	"github.com/noah-isme/gradebook-api/pkg/cache"
	"github.com/noah-isme/gradebook-api/pkg/config"
	"github.com/noah-isme/gradebook-api/pkg/database"
	"github.com/noah-isme/gradebook-api/pkg/jobs"
	"github.com/noah-isme/gradebook-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gradebook-api/pkg/middleware/requestid"
	"github.com/noah-isme/gradebook-api/pkg/payment"
	"github.com/noah-isme/gradebook-api/pkg/storage"
)

// @title Gradebook API
// @version 1.0.0
// @description Course gradebook, attendance and evaluation service for teachers.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()

	schoolRepo := repository.NewSchoolRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	sanctionRepo := repository.NewSanctionRepository(db)
	remediationRepo := repository.NewRemediationRepository(db)
	pendingRepo := repository.NewPendingRepository(db)
	topicRepo := repository.NewTopicLogRepository(db)
	reportRepo := repository.NewReportRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Evaluation.CacheTTL, logr, cfg.Evaluation.CacheEnabled)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gradebook-api",
		AdminEmailPatterns: cfg.Admin.EmailPatterns,
	})
	rosterSvc := service.NewRosterService(schoolRepo, courseRepo, studentRepo, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(assessmentRepo, gradeRepo, courseRepo, schoolRepo, studentRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, courseRepo, studentRepo, cacheSvc, validate, logr)
	homeworkSvc := service.NewHomeworkService(homeworkRepo, courseRepo, schoolRepo, studentRepo, cacheSvc, validate, logr)
	sanctionSvc := service.NewSanctionService(sanctionRepo, courseRepo, studentRepo, cacheSvc, validate, logr)
	remediationSvc := service.NewRemediationService(remediationRepo, courseRepo, assessmentRepo, studentRepo, cacheSvc, validate, logr)
	pendingSvc := service.NewPendingSubjectService(pendingRepo, schoolRepo, validate, logr)
	topicSvc := service.NewTopicLogService(topicRepo, courseRepo, validate, logr)

	evaluationSvc := service.NewEvaluationService(service.EvaluationSources{
		Courses:     courseRepo,
		Roster:      studentRepo,
		Calendars:   rosterSvc,
		Grades:      gradeRepo,
		Attendance:  attendanceRepo,
		Homework:    homeworkRepo,
		Sanctions:   sanctionRepo,
		Remediation: remediationRepo,
	}, cacheSvc, metricsSvc, cfg.Evaluation.CacheTTL, logr)
	narrativeSvc := service.NewNarrativeService(evaluationSvc, nil, logr)

	subscriptionSvc := service.NewSubscriptionService(
		subscriptionRepo,
		userRepo,
		payment.NewSnapGateway(cfg.Payment.ServerKey, cfg.Payment.Production),
		metricsSvc,
		validate,
		logr,
		service.SubscriptionConfig{MonthlyPrice: cfg.Payment.MonthlyPrice, YearlyPrice: cfg.Payment.YearlyPrice},
	)

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Roster:       handler.NewRosterHandler(rosterSvc),
		Grades:       handler.NewGradeHandler(gradeSvc),
		Attendance:   handler.NewAttendanceHandler(attendanceSvc),
		Homework:     handler.NewHomeworkHandler(homeworkSvc),
		Sanctions:    handler.NewSanctionHandler(sanctionSvc),
		Remediation:  handler.NewRemediationHandler(remediationSvc),
		Topics:       handler.NewTopicLogHandler(topicSvc),
		Pending:      handler.NewPendingSubjectHandler(pendingSvc),
		Evaluation:   handler.NewEvaluationHandler(evaluationSvc, narrativeSvc),
		Subscription: handler.NewSubscriptionHandler(subscriptionSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
			"postgres": db,
			"redis":    cache.Pinger{Client: redisClient},
		}),
	}

	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewDiskStore(cfg.Reports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare report storage", zap.Error(err))
		}
		exportSvc := service.NewExportService(service.ExportSources{
			Courses:     courseRepo,
			Roster:      studentRepo,
			Assessments: assessmentRepo,
			Grades:      gradeRepo,
			Attendance:  attendanceRepo,
			Evaluations: evaluationSvc,
		}, store, storage.NewSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL), service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)

		worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.Config{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			DeadLetter: worker.DeadLetter,
			Logger:     logr,
		})
		reportQueue.Start(ctx)

		reportSvc := service.NewReportService(reportRepo, courseRepo, reportQueue, exportSvc, validate, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
		})
		if n := reportSvc.RecoverPendingJobs(ctx); n > 0 {
			logr.Info("requeued pending report jobs", zap.Int("count", n))
		}
		reportSvc.StartCleanup(ctx)
		handlers.Reports = handler.NewReportHandler(reportSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, handler.Guards{
		Auth:         middleware.JWT(authSvc),
		Subscription: middleware.RequireSubscription(subscriptionSvc, cfg.Subscription.GateEnabled, logr),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
}
