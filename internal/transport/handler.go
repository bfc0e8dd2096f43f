package transport

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/anime-shed/ui-critic-go/internal/config"
	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/internal/logger"
	"github.com/anime-shed/ui-critic-go/internal/observer"
	"github.com/anime-shed/ui-critic-go/internal/service"
	"github.com/anime-shed/ui-critic-go/pkg/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// imageField is the multipart form field carrying the screenshot
const imageField = "image"

//go:embed web/index.html
var indexHTML []byte

// NewHandler builds the gin router serving the API, the crops and the browser client
func NewHandler(svc service.AnalysisService, metrics *observer.MetricsObserver, cfg *config.Config) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders:   []string{requestIDHeader},
			MaxAge:          12 * time.Hour,
		}),
		errorHandler(),
	)

	r.GET("/", index)
	r.GET("/health", healthCheck(cfg))
	r.GET("/api/metrics", metricsSnapshot(metrics))
	r.POST("/api/analyze",
		requestSizeLimiter(cfg.MaxUploadSize),
		requestTimeout(cfg.RequestTimeout),
		analyzeImage(svc),
	)

	if cfg.CropStore == config.CropStoreLocal {
		r.Static(cfg.CropsURLPrefix, cfg.CropsDir)
	}

	return r
}

func analyzeImage(svc service.AnalysisService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		file, err := c.FormFile(imageField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(c, apperrors.NewUploadTooLargeError(err))
				return
			}
			respondError(c, apperrors.NewInvalidRequestError(apperrors.MsgNoImage, err))
			return
		}

		logger.ForRequest(service.RequestIDFrom(ctx)).WithFields(logrus.Fields{
			"filename":     file.Filename,
			"size_bytes":   file.Size,
			"content_type": file.Header.Get("Content-Type"),
		}).Info("Received analysis request")

		result, err := svc.Analyze(ctx, file)

		// The client has been promised an answer within the request timeout
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			respondTimeout(c, err)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func healthCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Environment: cfg.Environment,
			Version:     config.Version,
		})
	}
}

func metricsSnapshot(metrics *observer.MetricsObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.JSON(http.StatusOK, models.MetricsResponse{})
			return
		}
		c.JSON(http.StatusOK, metrics.Snapshot())
	}
}

// respondError logs the full error and returns only the generic message to the client
func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)
	body := models.ErrorResponse{Error: apperrors.MsgAnalyzeFailed}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Details = appErr.Details
	}

	entry := logger.ForRequest(service.RequestIDFrom(c.Request.Context())).WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, body)
}

func respondTimeout(c *gin.Context, err error) {
	logger.ForRequest(service.RequestIDFrom(c.Request.Context())).WithError(err).WithFields(logrus.Fields{
		"path": c.Request.URL.Path,
	}).Error("Request timeout reached")

	c.AbortWithStatusJSON(http.StatusRequestTimeout, models.ErrorResponse{Error: apperrors.MsgRequestTimeout})
}
