package handle

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kyc-verifier/api/internal/domain"
	"kyc-verifier/api/internal/pipeline"
)

const (
	// MaxUploadSize bounds the multipart request body.
	MaxUploadSize = 10 << 20

	defaultTimeout = 180 * time.Second
	maxTimeout     = 600 * time.Second

	MessageVerified = "Thank you very much. You have been verified successfully."
	MessageRejected = "Verification failed, please try again."
)

// Service is the part of the pipeline the HTTP layer depends on.
type Service interface {
	ProcessDocument(ctx context.Context, image []byte, strategy string) (domain.DocumentFields, error)
	Verify(ctx context.Context, image []byte, strategy string, claim domain.UserClaim) (domain.ComparisonResult, domain.DocumentFields, error)
}

type Handle struct {
	svc             Service
	defaultStrategy string
	logger          *zap.Logger
}

func New(svc Service, defaultStrategy string, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{svc: svc, defaultStrategy: defaultStrategy, logger: logger.Named("http")}
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func (h *Handle) RegisterRoutes(router *gin.Engine) {
	router.MaxMultipartMemory = MaxUploadSize

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/process_document", h.ProcessDocument)
	router.POST("/v1/documents/extract", h.Extract)
}

// requestContext applies the X-Request-Timeout deadline and the X-Request-ID header.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc, string) {
	timeout := defaultTimeout
	if v := strings.TrimSpace(c.GetHeader("X-Request-Timeout")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = min(time.Duration(secs)*time.Second, maxTimeout)
		}
	}
	requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	return pipeline.ContextWithRequestID(ctx, requestID), cancel, requestID
}

// statusFor keeps processing failures distinct from a negative verification.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrComparison):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrOCR), errors.Is(err, domain.ErrExtraction):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handle) fail(c *gin.Context, requestID string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("request_id", requestID), zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error(), "request_id": requestID})
}
