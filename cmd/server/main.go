package main

import (
	"flag"
	"log/slog"
	"os"

	"inspectoriq/internal/config"
	"inspectoriq/internal/handler"
	"inspectoriq/internal/logger"
	"inspectoriq/internal/middleware"
	"inspectoriq/internal/service"
	"inspectoriq/internal/storage"
	"inspectoriq/internal/upstream"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)

	db, err := cfg.OpenGormDB()
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	durable, err := storage.NewDurable(db)
	if err != nil {
		slog.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	tabs := storage.NewTabs()

	up := upstream.NewClient(cfg.Upstream.BaseURL)
	authSvc := service.NewAuthService(up, durable, tabs)
	workflowSvc := service.NewWorkflowService(up, cfg.Report, durable, tabs)
	reportSvc := service.NewReportService(up, durable)

	authH := handler.NewAuthHandler(authSvc)
	workflowH := handler.NewWorkflowHandler(workflowSvc)
	reportsH := handler.NewReportsHandler(reportSvc, durable, tabs)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Tab-ID"},
		AllowCredentials: true,
	}))

	r.POST("/api/signin", authH.SignIn)
	r.POST("/api/signup", authH.SignUp)

	api := r.Group("/api", middleware.Auth(authSvc))
	api.POST("/signout", authH.SignOut)
	api.PUT("/settings/account", authH.UpdateAccount)

	api.GET("/templates", workflowH.Templates)
	api.POST("/workflow/template", workflowH.SelectTemplate)
	api.PUT("/workflow/step", workflowH.GoToStep)
	api.PUT("/workflow/fields", workflowH.SetFields)
	api.POST("/workflow/images", workflowH.AddImages)
	api.DELETE("/workflow/images/:index", workflowH.RemoveImage)
	api.PUT("/workflow/images/:index/caption", workflowH.SetCaption)
	api.POST("/workflow/generate", workflowH.Generate)
	api.GET("/workflow/progress", workflowH.Progress)
	api.GET("/workflow/progress/ws", workflowH.ProgressWS)

	api.GET("/reports", reportsH.List)
	api.DELETE("/reports/:id", reportsH.Delete)
	api.POST("/reports/:id/view", reportsH.PrepareView)
	api.GET("/reports/download", reportsH.Download)
	api.GET("/viewer", reportsH.Viewer)

	api.POST("/feedback", handler.Feedback)

	slog.Info("server starting", "addr", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		slog.Error("server failed", "err", err)
	}
}
