package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"homelist/internal/domain"
	"homelist/internal/service"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxUser      = "user"
	ctxToken     = "token"
)

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func accessLogMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(ctxRequestID),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// authMiddleware resolves the bearer token to a user and aborts with 401
// when it cannot.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c, detailBadToken)
			return
		}

		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				h.logger.WithError(err).WithField("request_id", c.GetString(ctxRequestID)).Debug("reject token")
			}
			h.abortWithError(c, err)
			return
		}

		c.Set(ctxUser, user)
		c.Set(ctxToken, token)
		c.Next()
	}
}

func (h *Handler) loginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if h.limiter.Allow(key) {
			c.Next()
			return
		}

		wait := h.limiter.RetryAfter(key)
		c.Header("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
		h.logger.WithFields(logrus.Fields{
			"client_ip":  key,
			"request_id": c.GetString(ctxRequestID),
		}).Warn("login rate limited")
		h.abortWithError(c, errRateLimited)
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
