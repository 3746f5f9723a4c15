package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/scholarly/backcontent/internal/infrastructure/logger"
	"github.com/scholarly/backcontent/internal/infrastructure/metrics"
	"github.com/scholarly/backcontent/internal/interfaces/http/handler"
	"github.com/scholarly/backcontent/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Articles *handler.ArticleHandler
	Authors  *handler.AuthorHandler
	Galleys  *handler.GalleyHandler
	Imports  *handler.ImportHandler
	Journals *handler.JournalHandler
	Accounts *handler.AccountHandler
	System   *handler.SystemHandler
}

// Options configure the middleware chain
type Options struct {
	Config  *config.Config
	JWT     *auth.JWTService
	Metrics *metrics.Recorder // nil disables the scrape endpoint and HTTP metrics
	Logger  *zap.Logger
	// Objects serves signed galley links under /objects when files live in memory
	Objects http.Handler
}

const objectsPath = "/objects"

// NewEngine builds the gin engine with every middleware and route.
// The returned func stops the rate limiters.
func NewEngine(opts Options, h Handlers) (*gin.Engine, func()) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.ServiceName != "" {
		tracing.ServiceName = cfg.Telemetry.ServiceName
	}
	engine.Use(middleware.TracingWithConfig(tracing))

	if opts.Metrics != nil {
		engine.Use(opts.Metrics.GinMiddleware())
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, cfg.HTTP.MaxUploadSize))

	var stops []func()
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		stops = append(stops, limiter.Stop)
		engine.Use(middleware.RateLimit(limiter))
	}

	jwtCfg := middleware.DefaultJWTConfig(opts.JWT)
	jwtCfg.DevJournalHeader = cfg.App.DevJournalHeader
	jwtCfg.Logger = log
	if opts.Metrics != nil && cfg.Metrics.Path != "" {
		jwtCfg.SkipPaths = append(jwtCfg.SkipPaths, cfg.Metrics.Path)
	}
	if opts.Objects != nil {
		jwtCfg.SkipPrefixes = append(jwtCfg.SkipPrefixes, objectsPath+"/")
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	engine.Use(middleware.TracingAttributeInjector())

	engine.GET("/health", h.System.Health)
	if opts.Objects != nil {
		objects := gin.WrapH(http.StripPrefix(objectsPath, opts.Objects))
		engine.GET(objectsPath+"/*key", objects)
		engine.HEAD(objectsPath+"/*key", objects)
	}
	engine.GET("/ready", h.System.Ready)
	if opts.Metrics != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}

	authGroup := NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		stops = append(stops, limiter.Stop)
		authGroup.Use(middleware.RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() }))
	}
	authGroup.
		POST("/login", h.Accounts.Login).
		POST("/refresh", h.Accounts.Refresh)

	NewRouter(engine).
		Register(authGroup).
		Register(editorGroups(h)...).
		Setup()

	return engine, func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// editorGroups are the routes that need an editor of the bound journal
func editorGroups(h Handlers) []RouteRegistrar {
	editor := middleware.RequireEditor()

	articles := NewDomainGroup("articles", "/articles").Use(editor).
		POST("", h.Articles.Create).
		GET("", h.Articles.List).
		GET("/:id", h.Articles.Get).
		PUT("/:id/info", h.Articles.SaveInfo).
		PUT("/:id/correspondence-author", h.Articles.SetCorrespondenceAuthor).
		PUT("/:id/publication", h.Articles.SavePublicationInfo).
		POST("/:id/wizard", h.Articles.Wizard).
		POST("/:id/publish", h.Articles.Publish).
		POST("/:id/authors", h.Authors.Add).
		PUT("/:id/authors/order", h.Authors.Reorder).
		DELETE("/:id/authors/:account_id", h.Authors.Remove).
		POST("/:id/galleys", h.Galleys.Upload).
		GET("/:id/galleys", h.Galleys.List)

	galleys := NewDomainGroup("galleys", "/galleys").Use(editor).
		GET("/:galley_id/download", h.Galleys.DownloadURL).
		GET("/:galley_id/preview", h.Galleys.Preview).
		DELETE("/:galley_id", h.Galleys.Delete)

	imports := NewDomainGroup("imports", "/imports").Use(editor).
		POST("/doi", h.Imports.DOI).
		POST("/url", h.Imports.URL).
		POST("/jats", h.Imports.JATS)

	directory := NewDomainGroup("directory", "/directory").Use(editor).
		GET("", h.Authors.SearchDirectory)

	journal := NewDomainGroup("journal", "/journal").Use(editor).
		GET("", h.Journals.Current).
		PUT("/identifiers", h.Journals.UpdateIdentifierSettings).
		GET("/issues", h.Journals.ListIssues).
		POST("/issues", h.Journals.CreateIssue)

	journals := NewDomainGroup("journals", "/journals").Use(editor).
		GET("", h.Journals.List).
		POST("", h.Journals.Create)

	accounts := NewDomainGroup("accounts", "/accounts").Use(editor).
		GET("", h.Accounts.Search).
		POST("", h.Accounts.Create).
		GET("/:account_id", h.Accounts.Get).
		POST("/:account_id/roles", h.Accounts.GrantRole)

	system := NewDomainGroup("system", "").Use(editor).
		GET("/activity", h.System.Activity).
		GET("/system/info", h.System.Info)

	return []RouteRegistrar{articles, galleys, imports, directory, journal, journals, accounts, system}
}
