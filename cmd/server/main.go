package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/crestwood-digital/school-admin-api/api/swagger"
	"github.com/crestwood-digital/school-admin-api/internal/handler"
	"github.com/crestwood-digital/school-admin-api/internal/middleware"
	"github.com/crestwood-digital/school-admin-api/internal/models"
	"github.com/crestwood-digital/school-admin-api/internal/repository"
	"github.com/crestwood-digital/school-admin-api/internal/service"
	"github.com/crestwood-digital/school-admin-api/internal/session"
	"github.com/crestwood-digital/school-admin-api/pkg/cache"
	"github.com/crestwood-digital/school-admin-api/pkg/config"
	"github.com/crestwood-digital/school-admin-api/pkg/database"
	"github.com/crestwood-digital/school-admin-api/pkg/export"
	"github.com/crestwood-digital/school-admin-api/pkg/logger"
	corsmiddleware "github.com/crestwood-digital/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/crestwood-digital/school-admin-api/pkg/middleware/requestid"
)

// @title School Admin API
// @version 1.0.0
// @description Role-based school administration backend
// @BasePath /api
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	examRepo := repository.NewExamRepository(db)

	sessions := session.NewManager(session.NewRedisStore(redisClient), session.Config{
		Secret:     cfg.Session.Secret,
		TTL:        cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	})

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, sessions, validate, logr, service.AuthConfig{DefaultClassID: cfg.School.DefaultClassID})
	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, userRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, userRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, userRepo, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, export.NewCSVExporter(), export.NewPDFExporter(), validate, logr)

	authHandler := handler.NewAuthHandler(authSvc, sessions, metricsSvc)
	userHandler := handler.NewUserHandler(userSvc)
	classHandler := handler.NewClassHandler(classSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	feeHandler := handler.NewFeeHandler(feeSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc)
	examHandler := handler.NewExamHandler(examSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authenticated := middleware.Authenticate(sessions)
	adminOnly := middleware.RequireRoles(userRepo, models.RoleAdmin)
	administrative := middleware.RequireRoles(userRepo, models.RoleAdmin, models.RolePrincipal)
	staff := middleware.RequireRoles(userRepo, models.RoleAdmin, models.RolePrincipal, models.RoleTeacher)
	anyRole := middleware.RequireRoles(userRepo, models.RoleAdmin, models.RolePrincipal, models.RoleTeacher, models.RoleStudent, models.RoleParent)

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/logout", authenticated, authHandler.Logout)
			auth.GET("/me", authenticated, authHandler.Me)
			auth.POST("/change-password", authenticated, authHandler.ChangePassword)
		}

		users := api.Group("/auth/users", authenticated, administrative)
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", adminOnly, userHandler.Delete)
		}

		years := api.Group("/academic-years", authenticated)
		{
			years.GET("", anyRole, classHandler.ListAcademicYears)
			years.POST("", administrative, classHandler.CreateAcademicYear)
		}

		classes := api.Group("/classes", authenticated)
		{
			classes.GET("", anyRole, classHandler.ListClasses)
			classes.GET("/:id", anyRole, classHandler.GetClass)
			classes.POST("", administrative, classHandler.CreateClass)
			classes.PUT("/:id/teacher", administrative, classHandler.AssignClassTeacher)
		}

		subjects := api.Group("/subjects", authenticated)
		{
			subjects.GET("", anyRole, subjectHandler.List)
			subjects.GET("/assignments", staff, subjectHandler.ListAssignments)
			subjects.POST("/assignments", administrative, subjectHandler.AssignTeacher)
			subjects.GET("/:id", anyRole, subjectHandler.Get)
			subjects.POST("", administrative, subjectHandler.Create)
		}

		attendance := api.Group("/attendance", authenticated)
		{
			attendance.POST("", staff, attendanceHandler.Mark)
			attendance.GET("", staff, attendanceHandler.ListByClass)
		}

		students := api.Group("/students", authenticated)
		{
			students.GET("/:id/attendance", anyRole, attendanceHandler.ListByStudent)
			students.GET("/:id/fees", anyRole, feeHandler.ListByStudent)
		}

		assignments := api.Group("/assignments", authenticated)
		{
			assignments.GET("", anyRole, assignmentHandler.ListByClass)
			assignments.POST("", staff, assignmentHandler.Create)
			assignments.POST("/submissions", middleware.RequireRoles(userRepo, models.RoleStudent), assignmentHandler.Submit)
			assignments.PUT("/submissions/:id/grade", staff, assignmentHandler.Grade)
			assignments.GET("/:id", anyRole, assignmentHandler.Get)
			assignments.GET("/:id/submissions", staff, assignmentHandler.ListSubmissions)
		}

		fees := api.Group("/fees", authenticated)
		{
			fees.POST("", administrative, feeHandler.Create)
			fees.GET("/:id", anyRole, feeHandler.Get)
			fees.POST("/:id/pay", administrative, feeHandler.Pay)
		}

		notices := api.Group("/notices", authenticated)
		{
			notices.GET("", anyRole, noticeHandler.List)
			notices.GET("/:id", anyRole, noticeHandler.Get)
			notices.POST("", administrative, noticeHandler.Create)
			notices.PUT("/:id", administrative, noticeHandler.Update)
			notices.DELETE("/:id", administrative, noticeHandler.Delete)
		}

		exams := api.Group("/exams", authenticated)
		{
			exams.GET("", anyRole, examHandler.ListByClass)
			exams.POST("", staff, examHandler.Create)
			exams.GET("/:id", anyRole, examHandler.Get)
			exams.POST("/:id/results", staff, examHandler.RecordResult)
			exams.GET("/:id/results", staff, examHandler.ListResults)
			exams.GET("/:id/results/export", staff, examHandler.ExportResults)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
