package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"homelist/internal/service"
)

const (
	detailBadCredentials = "Incorrect username or password"
	detailBadToken       = "Could not validate credentials"
	detailListingMissing = "Listing not found"
)

var errRateLimited = errors.New("rate limit exceeded")

// fieldError mirrors one entry of a 422 response body.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// abortWithError maps err onto a status code and a {"detail": ...} body.
func (h *Handler) abortWithError(c *gin.Context, err error) {
	var (
		forbidden  *service.ForbiddenError
		validation *service.ValidationError
	)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		unauthorized(c, detailBadCredentials)
	case errors.Is(err, service.ErrInvalidToken):
		unauthorized(c, detailBadToken)
	case errors.Is(err, service.ErrListingNotFound):
		detail(c, http.StatusNotFound, detailListingMissing)
	case errors.Is(err, service.ErrUserNotFound):
		detail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrPhotoNotFound):
		detail(c, http.StatusNotFound, "Photo not found")
	case errors.Is(err, service.ErrUserAlreadyExists):
		detail(c, http.StatusConflict, "Username already taken")
	case errors.Is(err, service.ErrStorageDisabled):
		detail(c, http.StatusServiceUnavailable, "Photo storage is not configured")
	case errors.Is(err, errRateLimited):
		detail(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
	case errors.As(err, &forbidden):
		detail(c, http.StatusForbidden, forbidden.Reason)
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []fieldError{{
			Loc:  []string{"body", validation.Field},
			Msg:  validation.Message,
			Type: "value_error",
		}}})
	default:
		h.logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(ctxRequestID),
		}).Error("request failed")
		detail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// abortWithBindError reports a request body or query that failed to bind.
func abortWithBindError(c *gin.Context, location string, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fieldError{
				Loc:  []string{location, fe.Field()},
				Msg:  validationMessage(fe),
				Type: "value_error." + fe.Tag(),
			})
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": out})
		return
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []fieldError{{
		Loc:  []string{location},
		Msg:  err.Error(),
		Type: "value_error",
	}}})
}
