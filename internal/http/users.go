package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"homelist/internal/domain"
	"homelist/internal/service"
)

type registerRequest struct {
	Username    string        `json:"userName" binding:"required"`
	FullName    string        `json:"fullName"`
	Email       string        `json:"email" binding:"required,email"`
	DateOfBirth *time.Time    `json:"DoB" binding:"omitempty,dob"`
	Gender      domain.Gender `json:"gender" binding:"omitempty,gender"`
	Password    string        `json:"password" binding:"required,password"`
}

type updateUserRequest struct {
	FullName    *string        `json:"fullName"`
	Email       *string        `json:"email" binding:"omitempty,email"`
	DateOfBirth *time.Time     `json:"DoB" binding:"omitempty,dob"`
	Gender      *domain.Gender `json:"gender" binding:"omitempty,gender"`
	Password    *string        `json:"password" binding:"omitempty,password"`
}

type UserResponse struct {
	ID          int64         `json:"id"`
	Username    string        `json:"userName"`
	FullName    string        `json:"fullName"`
	Email       string        `json:"email"`
	DateOfBirth *time.Time    `json:"DoB"`
	Gender      domain.Gender `json:"gender"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth,
		Gender:      u.Gender,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, "body", err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username:    req.Username,
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.logger.WithField("user_id", user.ID).Info("user registered")
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, userToResponse(currentUser(c)))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, "body", err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c).ID, service.ProfilePatch{
		FullName:    req.FullName,
		Email:       req.Email,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Password:    req.Password,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}
