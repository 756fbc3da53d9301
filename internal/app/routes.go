package app

import (
	"github.com/gin-gonic/gin"
	"github.com/notevault/core/internal/middleware"
	"github.com/notevault/core/internal/modules/auth/auth"
	"github.com/notevault/core/internal/modules/content/note"
	"github.com/notevault/core/internal/modules/processing/ai"
	pkgredis "github.com/notevault/core/internal/pkg/redis"
	"github.com/notevault/core/internal/pkg/response"
	"github.com/notevault/core/internal/pkg/taskqueue"
)

func (a *App) registerRoutes(rc *pkgredis.Client) {
	r := a.router
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group("/api/v2")
	if rc != nil {
		api.Use(middleware.RateLimit(rc.Raw()))
		api.Use(middleware.Idempotence(rc.Raw()))
	}

	api.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{"name": "notevault-core", "version": "1.0.0"})
	})

	// Auth.
	authSvc := auth.NewService(a.db)
	auth.NewHandler(authSvc).RegisterRoutes(api)

	// Notes.
	noteSvc := note.NewService(a.db)
	note.NewHandler(noteSvc).RegisterRoutes(api, authMW)

	// AI summarization pipeline.
	aiCfg := a.cfg.AI

	var ledger ai.Ledger
	if rc != nil {
		ledger = ai.NewRedisLedger(rc, aiCfg.QuotaMaxCalls, aiCfg.QuotaWindow.Std(), a.logger)
	} else {
		ledger = ai.NewMemoryLedger(aiCfg.QuotaMaxCalls, aiCfg.QuotaWindow.Std())
	}

	cache := ai.NewMemoryCache(aiCfg.CacheTTL.Std(), aiCfg.CacheCapacity)
	store := ai.NewSummaryStore(a.db, aiCfg.CacheTTL.Std())

	var upstream ai.Upstream
	provider := ai.SelectProvider(aiCfg)
	if aiCfg.EnableSummary && provider != nil {
		caller, err := ai.NewCaller(provider, aiCfg.MaxTokens)
		if err != nil {
			a.logger.Warn("AI provider misconfigured, summarization disabled")
		} else {
			upstream = ai.NewAdapter(caller, aiCfg.RequestTimeout.Std(), aiCfg.MaxRetries, aiCfg.RetryBackoff.Std(), a.logger)
		}
	}
	if upstream == nil {
		upstream = ai.Disabled{}
	}

	aiSvc := ai.NewService(cache, store, ledger, upstream, a.logger)

	var tasks *ai.TaskRunner
	if rc != nil {
		tasks = ai.NewTaskRunner(aiSvc, taskqueue.NewService(rc), noteSvc, a.logger)
	}

	ai.NewHandler(aiSvc, tasks, store, noteSvc, aiCfg.BatchConcurrency).RegisterRoutes(api, authMW)
}
