package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"impronta-api/internal/domain"
	"impronta-api/internal/service"
)

const (
	msgInvalidBody        = "request body must be a JSON object with string fields"
	msgInvalidCredentials = "invalid credentials"
	msgEmailTaken         = "email is already registered"
	msgUserNotFound       = "user not found"
	msgInvalidToken       = "invalid or expired token"
	msgInternal           = "internal server error"

	// isoMillis matches JavaScript's Date.prototype.toISOString.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

type UserResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	CreatedAt *string `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC().Format(isoMillis)
	return &v
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.entry(c).WithError(err).Debug("rejecting malformed request body")
	c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody})
}

// writeError maps service errors to status codes. Unknown errors are logged
// and answered with a generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": msgEmailTaken})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgInvalidCredentials})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgUserNotFound})
	default:
		h.entry(c).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
	}
}
