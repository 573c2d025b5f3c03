package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/config"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/middlewares"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/models"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
	"bitbucket.org/mmdatafocus/invoiceflow_backend/workflow"
)

const defaultPort = "8080"

var tracer = otel.Tracer("invoiceflow-backend")

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.Request.URL.Path,
				"method":         c.Request.Method,
				"correlation_id": cid,
			}).Error(ginErr.Error())
		}
	}
}

func registerRoutes(r *gin.Engine, h *InvoiceHandler) {
	r.POST("/auth/login", loginHandler())
	r.POST("/auth/register", registerHandler())
	r.POST("/auth/change-password", changePasswordHandler())

	r.GET("/templates", listTemplatesHandler())
	r.GET("/templates/:id", getTemplateHandler())

	authed := r.Group("/", middlewares.RequireAuth())
	authed.POST("/invoice", h.createInvoiceHandler())
	authed.GET("/invoices", h.listInvoicesHandler())
	authed.GET("/invoice/exists", h.invoiceExistsHandler())
	authed.GET("/invoice/:id", h.getInvoiceHandler())
	authed.PUT("/invoice/:id/common-field", h.updateCommonFieldHandler())
	authed.PUT("/invoice/:id/section/:sectionId", h.updateSectionDataHandler())
	authed.POST("/invoice/:id/section", h.addSectionHandler())
	authed.DELETE("/invoice/:id/section/:sectionId", h.removeSectionHandler())
	authed.PUT("/invoice/:id/additional-field", h.updateAdditionalFieldHandler())

	authed.GET("/invoice/:id/comments", h.listCommentsHandler())
	authed.POST("/invoice/:id/comments", h.addCommentHandler())
	authed.POST("/invoice/:id/comments/:commentId/resolve", h.resolveCommentHandler())

	authed.POST("/invoice/:id/submit", h.approvalActionHandler(models.ActionSubmit))
	authed.POST("/invoice/:id/approve", h.approvalActionHandler(models.ActionApprove))
	authed.POST("/invoice/:id/reject", h.approvalActionHandler(models.ActionReject))
	authed.POST("/invoice/:id/pm-request", h.approvalActionHandler(models.ActionPMRequest))
	authed.POST("/invoice/:id/pm-resolve", h.approvalActionHandler(models.ActionPMResolve))
	authed.POST("/invoice/:id/dispatch", h.approvalActionHandler(models.ActionDispatch))

	authed.GET("/invoice/:id/validate", h.validateInvoiceHandler())
	authed.POST("/invoice/:id/generate", h.generateInvoiceHandler())
	authed.GET("/invoice/:id/export", h.exportInvoiceHandler())
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until DB/Redis are ready, we return 503 for app endpoints.
	r := gin.New()
	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		// Always allow Cloud Run startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		// Gate critical endpoints on dependency readiness.
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// Production requires an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true

	r.Use(cors.New(corsConfig))
	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	repo := models.NewConfigurationRepository(nil)
	autoSaver := workflow.NewAutoSaver(repo)
	h := NewInvoiceHandler(repo, autoSaver)
	registerRoutes(r, h)
	r.NoRoute(customNotFoundHandler)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// IMPORTANT: AutoMigrate can run DDL that blocks tables and causes 504/502 timeouts.
	// Allow disabling migrations on startup (run them as a separate job instead).
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Background auto-save loop.
	autoSaveCtx, cancelAutoSave := context.WithCancel(context.Background())
	defer cancelAutoSave()
	go autoSaver.Start(autoSaveCtx)

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on port ", port)
	log.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background workers first, then flush anything still queued.
	cancelAutoSave()
	autoSaver.Flush(context.Background())

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
