package fakeapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/branchd-dev/memberctl/internal/auth"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest holds the fields every registration must carry.
// Any other fields in the body are stored on the profile.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide an email and password"})
		return
	}

	s.mu.Lock()
	id, ok := s.byEmail[normalizeEmail(req.Email)]
	var m *member
	if ok {
		m = s.members[id]
	}
	s.mu.Unlock()

	if m == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	if err := s.hasher.Verify(req.Password, m.passwordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	s.respondWithToken(c, http.StatusOK, m)
}

func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var extra map[string]any
	if err := c.ShouldBindBodyWith(&extra, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	extra["name"] = req.Name

	s.mu.Lock()
	m, err := s.createMember(req.Email, req.Password, MembershipMember, extra)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "User already exists"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to create member")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	s.logger.Info().Str("member_id", m.id).Msg("Member registered")
	s.respondWithToken(c, http.StatusCreated, m)
}

func (s *Server) respondWithToken(c *gin.Context, status int, m *member) {
	s.mu.Lock()
	profile := m.snapshot()
	s.mu.Unlock()

	token, err := s.signer.GenerateToken(m.id, profile["email"].(string), profile["membershipType"].(string))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	c.JSON(status, gin.H{"success": true, "token": token, "data": profile})
}

func (s *Server) getCurrentMember(c *gin.Context) {
	p, _ := GetPrincipal(c)

	profile, ok := s.Profile(p.UserID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

func (s *Server) updateProfile(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile data"})
		return
	}

	s.mu.Lock()
	m, ok := s.members[p.UserID]
	changed := make(map[string]any, len(updates))
	if ok {
		for k, v := range updates {
			if protectedFields[k] {
				continue
			}
			m.profile[k] = v
			changed[k] = v
		}
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Member not found"})
		return
	}

	// Only the accepted fields are echoed back
	c.JSON(http.StatusOK, gin.H{"success": true, "data": changed})
}

func (s *Server) changePassword(c *gin.Context) {
	p, _ := GetPrincipal(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please provide current and new password"})
		return
	}

	s.mu.Lock()
	m, ok := s.members[p.UserID]
	var hash string
	if ok {
		hash = m.passwordHash
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Member not found"})
		return
	}

	if err := s.hasher.Verify(req.CurrentPassword, hash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Current password is incorrect"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to verify password")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	newHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	s.mu.Lock()
	m.passwordHash = newHash
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}
