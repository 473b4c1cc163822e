package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	MemberCode string `json:"member_code" binding:"required"`
	PIN        string `json:"pin" binding:"required"`
}

type loginResponse struct {
	MemberCode string   `json:"member_code"`
	MemberName string   `json:"member_name"`
	Roles      []string `json:"roles"`
	ExpiresAt  string   `json:"expires_at"`
}

func (s *Server) login(c *gin.Context) {
	if s.loginLimiter != nil {
		allowed, retryAfter := s.loginLimiter.Allow(c.Request.Context(), c.ClientIP())
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req.MemberCode, req.PIN)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	maxAge := int(s.cfg.SessionTTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, result.Token, maxAge, "/", "", s.cfg.AuthCookieSecure, true)

	c.JSON(http.StatusOK, loginResponse{
		MemberCode: result.MemberCode,
		MemberName: result.MemberName,
		Roles:      result.Session.Roles,
		ExpiresAt:  result.Session.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) logout(c *gin.Context) {
	token, err := c.Cookie(SessionCookieName)
	if err == nil && token != "" {
		if err := s.auth.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed", zap.Error(err))
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) me(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	member, err := s.members.GetByID(c.Request.Context(), session.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member": member,
		"roles":  session.Roles,
	})
}
