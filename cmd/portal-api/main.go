package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colegio-sanjuan/portal-api/internal/handler"
	"github.com/colegio-sanjuan/portal-api/internal/middleware"
	"github.com/colegio-sanjuan/portal-api/internal/models"
	"github.com/colegio-sanjuan/portal-api/internal/report"
	"github.com/colegio-sanjuan/portal-api/internal/repository"
	"github.com/colegio-sanjuan/portal-api/internal/service"
	"github.com/colegio-sanjuan/portal-api/pkg/cache"
	"github.com/colegio-sanjuan/portal-api/pkg/config"
	"github.com/colegio-sanjuan/portal-api/pkg/database"
	"github.com/colegio-sanjuan/portal-api/pkg/logger"
	corsmiddleware "github.com/colegio-sanjuan/portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/colegio-sanjuan/portal-api/pkg/middleware/requestid"
)

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

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown report timezone, using UTC", "timezone", cfg.Reporting.Timezone)
		loc = time.UTC
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: report caching degrades to direct computation.
	var cacheRepo service.CacheRepository
	if cfg.Reporting.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reporting.CacheTTL, logr, cacheRepo != nil)

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	faultRepo := repository.NewFaultRepository(db)
	configRepo := repository.NewConfigurationRepository(db)
	userRepo := repository.NewUserRepository(db)

	configSvc := service.NewConfigurationService(configRepo, cfg.Reporting.ArrivalCutoff, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, configSvc, nil, logr, loc)
	incidentSvc := service.NewIncidentService(incidentRepo, studentRepo, faultRepo, nil, logr)

	year := time.Now().In(loc).Year()
	reportSvc := service.NewReportService(service.ReportServiceParams{
		Students:   studentRepo,
		Attendance: attendanceRepo,
		Incidents:  incidentRepo,
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Logger:     logr,
		Calendar:   report.DefaultAcademicCalendar(year-1, year, year+1),
		Location:   loc,
	})
	exportSvc := service.NewExportService(logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, cacheSvc)
	incidentHandler := handler.NewIncidentHandler(incidentSvc, cacheSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	adminHandler := handler.NewAdminHandler(configSvc, metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("", middleware.JWT(authSvc))
	{
		authed.GET("/students", studentHandler.List)
		authed.GET("/students/:id", studentHandler.Get)
		authed.POST("/students", middleware.RBAC(models.RoleDirector), studentHandler.Create)

		registrars := middleware.RBAC(models.RoleDirector, models.RoleAuxiliar)
		authed.POST("/attendance", registrars, attendanceHandler.Register)
		authed.PATCH("/attendance/:id/justification", registrars, attendanceHandler.Justify)

		incidentWriters := middleware.RBAC(models.RoleDirector, models.RoleAuxiliar, models.RoleDocente)
		authed.GET("/incidents", incidentHandler.List)
		authed.POST("/incidents", incidentWriters, incidentHandler.Register)
		authed.PATCH("/incidents/:id/status", registrars, incidentHandler.SetStatus)
		authed.GET("/faults", incidentHandler.ListFaults)

		authed.GET("/reports/attendance", reportHandler.Attendance)
		authed.GET("/reports/incidents", reportHandler.Incidents)

		director := middleware.RBAC(models.RoleDirector)
		authed.PUT("/admin/arrival-cutoff", director, adminHandler.SetArrivalCutoff)
		authed.GET("/admin/stats", director, adminHandler.Stats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", loc.String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
