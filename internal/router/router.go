package router

import (
	"fmt"
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/thuan-cell/thuan-cell/internal/config"
	"github.com/thuan-cell/thuan-cell/internal/handlers"
	"github.com/thuan-cell/thuan-cell/internal/models"
	"github.com/thuan-cell/thuan-cell/internal/repository"
	"github.com/thuan-cell/thuan-cell/internal/utils"
)

const cookieName = "kpi_session"

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	handlers.Fail(c, http.StatusTooManyRequests, "Quá nhiều yêu cầu, vui lòng thử lại sau "+time.Until(info.ResetTime).Round(time.Second).String()+".")
}

// newLimiter gives each route its own in-memory bucket per client IP.
func newLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  cfg.Window,
		Limit: cfg.Requests,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
}

// Deps are the long-lived components the routes are served from.
type Deps struct {
	Config   *config.Config
	Store    *repository.SessionStore
	Rubric   *models.Rubric
	Renderer handlers.ReportRenderer
	// AssetsDir is served under /assets.
	AssetsDir string
}

func Setup(log *zap.Logger, deps Deps) (*gin.Engine, error) {
	cfg := deps.Config

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("failed to register validators: %w", err)
		}
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxBytes
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		IsDevelopment:      !cfg.Server.Production,
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	if deps.AssetsDir != "" {
		router.Static("/assets", deps.AssetsDir)
	}
	router.GET("/healthz", handlers.Health(deps.Store))

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Server.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(cfg.Session.IdleTimeout.Seconds()),
	})

	app := router.Group("/")
	app.Use(sessions.Sessions(cookieName, store))
	// Now that sessions are initialized, other middleware can use them.
	app.Use(SessionLoader(log, deps.Store))
	app.Use(NonceMiddleware())
	app.Use(CSRFProtection())
	app.Use(ContentSecurityPolicy())

	evaluationHandler := handlers.NewEvaluationHandler(log, deps.Store, deps.Rubric)
	employeeHandler := handlers.NewEmployeeHandler(log, deps.Store)
	logoHandler := handlers.NewLogoHandler(log, deps.Store, func() config.UploadConfig {
		if current := config.Current(); current != nil {
			return current.Upload
		}
		return cfg.Upload
	})
	reportHandler := handlers.NewReportHandler(log, deps.Store, deps.Rubric, deps.Renderer)

	app.GET("", evaluationHandler.Page)
	app.POST("/preview", evaluationHandler.TogglePreview)
	app.POST("/theme", handlers.ToggleTheme)
	app.POST("/employee", employeeHandler.Update)
	app.POST("/logo", newLimiter(cfg.RateLimit), logoHandler.Upload)

	evaluationRoutes := app.Group("/evaluation")
	{
		evaluationRoutes.POST("/rate", evaluationHandler.Rate)
		evaluationRoutes.POST("/note", evaluationHandler.Note)
	}

	reportRoutes := app.Group("/report")
	{
		reportRoutes.GET("", reportHandler.Show)
		reportRoutes.GET("/pdf", newLimiter(cfg.RateLimit), reportHandler.PDF)
	}

	return router, nil
}
