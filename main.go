package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tracelens/backend/internal/client"
	"github.com/tracelens/backend/internal/config"
	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/handler"
	"github.com/tracelens/backend/internal/model"
	"github.com/tracelens/backend/internal/service"
)

// @title TraceLens API
// @version 1.0
// @description Issue analysis backend: proxies the error tracker and runs AI root-cause analysis per workspace.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env는 로컬 개발용, 없으면 무시
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	repo := &db.Postgres{Pool: pool}

	authSvc, err := service.NewAuthService(repo, cfg.Auth)
	if err != nil {
		log.Fatalf("auth service init failed: %v", err)
	}
	if err := authSvc.EnsureSchema(ctx); err != nil {
		log.Fatalf("auth schema init failed: %v", err)
	}
	if cfg.Auth.AdminLoginID != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminLoginID, cfg.Auth.AdminPassword); err != nil {
			log.Fatalf("admin bootstrap failed: %v", err)
		}
	}

	oidcSvc, err := service.NewOIDCService(ctx, cfg.OIDC)
	if err != nil {
		log.Fatalf("oidc init failed: %v", err)
	}

	workspaceSvc := service.NewWorkspaceService(repo, cfg.Tracker)
	if err := workspaceSvc.EnsureSchema(ctx); err != nil {
		log.Fatalf("workspace schema init failed: %v", err)
	}
	if err := repo.EnsureIssueSchema(ctx); err != nil {
		log.Fatalf("issue schema init failed: %v", err)
	}

	invocations := service.NewInvocationLog(repo)
	if err := invocations.EnsureSchema(ctx); err != nil {
		log.Fatalf("invocation schema init failed: %v", err)
	}

	similarSvc := service.NewSimilarService(repo, cfg.Analysis)
	if err := similarSvc.EnsureSchema(ctx); err != nil {
		// pgvector가 없는 DB에서도 서버는 뜨도록 유사 이슈 기능만 끈다
		log.Printf("embedding schema init failed, similar issues disabled: %v", err)
		similarSvc = nil
	}

	newTracker := func(creds model.TrackerCredentials) service.IssueFetcher {
		return client.NewTrackerClient(cfg.Tracker, creds)
	}
	newAnalyzer := func(ctx context.Context, apiKey, modelName string) (service.Analyzer, error) {
		completion, err := client.NewCompletionClient(ctx, apiKey, modelName)
		if err != nil {
			return nil, err
		}
		return service.NewAnalysisEngine(completion, invocations), nil
	}

	workflowSvc, err := service.NewWorkflowService(repo, repo, newTracker, newAnalyzer, cfg.Analysis)
	if err != nil {
		log.Fatalf("workflow service init failed: %v", err)
	}
	if similarSvc != nil {
		workflowSvc.SetSimilarityIndexer(similarSvc)
	}

	issueSvc := service.NewIssueService(repo, cfg.Tracker)

	authHandler := handler.NewAuthHandler(authSvc, oidcSvc)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceSvc, cfg.Analysis)
	issueHandler := handler.NewIssueHandler(issueSvc, workflowSvc, workspaceSvc, similarSvc)

	router := gin.Default()
	router.Use(handler.CORSMiddleware(strings.Split(cfg.Server.AllowedOrigins, ","), true))

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.GET("/openapi.json", handler.OpenAPIDoc)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/config", authHandler.Config)
			auth.GET("/sso/start", authHandler.SSOStart)
			auth.GET("/sso/callback", authHandler.SSOCallback)
			auth.GET("/me", handler.AuthMiddleware(authSvc), authHandler.Me)
		}

		protected := v1.Group("", handler.AuthMiddleware(authSvc))
		{
			workspaces := protected.Group("/workspaces")
			{
				workspaces.POST("", workspaceHandler.Create)
				workspaces.GET("/current", workspaceHandler.GetCurrent)
				workspaces.PATCH("/current", workspaceHandler.Update)
				workspaces.GET("/current/settings", workspaceHandler.GetSettings)
				workspaces.PATCH("/current/settings", workspaceHandler.UpdateSettings)
				workspaces.POST("/current/test-tracker", workspaceHandler.TestTracker)
				workspaces.POST("/current/test-model", workspaceHandler.TestModel)
			}

			issues := protected.Group("/issues")
			{
				issues.GET("", issueHandler.List)
				issues.GET("/processed", issueHandler.ListProcessed)
				issues.GET("/:id", issueHandler.Get)
				issues.POST("/:id/analyze", issueHandler.Analyze)
				issues.GET("/:id/similar", issueHandler.Similar)
			}
		}
	}

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
