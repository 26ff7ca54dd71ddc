package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authMiddleware "github.com/samirwankhede/channel-booking-reports/internal/middleware"
	authService "github.com/samirwankhede/channel-booking-reports/internal/service/auth"
)

type Service interface {
	Login(ctx context.Context, req authService.LoginRequest) (*authService.Session, error)
	Restore(token string) (*authService.Session, error)
	Logout(adminID string)
	TTL() time.Duration
}

type AuthHandler struct {
	log    *zap.Logger
	svc    Service
	secure bool
}

// NewAuthHandler serves the session endpoints; secure marks the cookie HTTPS-only.
func NewAuthHandler(log *zap.Logger, svc Service, secure bool) *AuthHandler {
	return &AuthHandler{log: log, svc: svc, secure: secure}
}

func (h *AuthHandler) Register(r *gin.Engine) {
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/session", h.session)
	}
}

func (h *AuthHandler) login(c *gin.Context) {
	var req authService.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, authService.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Error("Login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authMiddleware.SessionCookie, sess.Token, int(h.svc.TTL().Seconds()), "/", "", h.secure, true)
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) logout(c *gin.Context) {
	if sess, err := h.svc.Restore(token(c)); err == nil {
		h.svc.Logout(sess.AdminID)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authMiddleware.SessionCookie, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) session(c *gin.Context) {
	sess, err := h.svc.Restore(token(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin_id": sess.AdminID, "operator_id": sess.OperatorID, "expires": sess.Expires})
}

func token(c *gin.Context) string {
	if v, err := c.Cookie(authMiddleware.SessionCookie); err == nil && v != "" {
		return v
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}
