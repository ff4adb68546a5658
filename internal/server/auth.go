package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
)

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) Signup(c *gin.Context) {
	if s.loginLimiter.Enabled() {
		res, err := s.loginLimiter.AllowSignup(c.Request.Context(), c.ClientIP())
		if err == nil && !res.Allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req authdomain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.authsvc.Signup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if s.loginLimiter.Enabled() {
		res, err := s.loginLimiter.AllowLogin(c.Request.Context(), c.ClientIP(), req.Email)
		if err == nil && !res.Allowed {
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	req.UserAgent = c.Request.UserAgent()
	req.IPAddress = c.ClientIP()
	result, err := s.authsvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.RawToken,
		"expires_at": result.ExpiresAt,
		"user":       result.User,
	})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.authsvc.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) Me(c *gin.Context) {
	user, err := s.authsvc.Me(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, ok := usercontext.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authsvc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
