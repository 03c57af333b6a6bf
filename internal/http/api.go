package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"impronta-api/internal/auth"
	"impronta-api/internal/repository"
	"impronta-api/internal/service"
)

const healthTimeout = 5 * time.Second

// Handler wires HTTP routes to domain services.
type Handler struct {
	accounts   service.AccountService
	health     repository.HealthChecker
	authn      *auth.Authenticator
	logger     *logrus.Logger
	corsOrigin string
}

func NewHandler(accounts service.AccountService, health repository.HealthChecker, authn *auth.Authenticator, logger *logrus.Logger, corsOrigin string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	return &Handler{
		accounts:   accounts,
		health:     health,
		authn:      authn,
		logger:     logger,
		corsOrigin: corsOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), h.recovery(), corsMiddleware(h.corsOrigin))

	router.GET("/health", h.healthCheck)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", h.requireAuth(), h.me)
	}
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type meResponse struct {
	User UserResponse `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, authResponse{User: userToResponse(res.User), Token: res.Token})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{User: userToResponse(res.User), Token: res.Token})
}

func (h *Handler) me(c *gin.Context) {
	id, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
		return
	}

	user, err := h.accounts.WhoAmI(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, meResponse{User: userToResponse(user)})
}

func (h *Handler) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	ok, err := h.health.Health(ctx)
	if err != nil {
		h.entry(c).WithError(err).Warn("health probe failed")
	}
	status := "ok"
	if err != nil || !ok {
		status = "error"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
