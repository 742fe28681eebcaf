package fakeapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/branchd-dev/memberctl/internal/auth"
)

const (
	bearerPrefix = "Bearer "
	principalKey = "principal"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
)

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the authenticated member of the request
func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}

	p, ok := v.(*auth.Principal)
	return p, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func (s *Server) respondWithError(c *gin.Context, statusCode int, err error, message string) {
	s.logger.Warn().Err(err).Msg(message)
	c.AbortWithStatusJSON(statusCode, gin.H{"success": false, "message": message})
}

// bearerAuthMiddleware validates the bearer token and loads the member
func (s *Server) bearerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			var message string
			switch err {
			case ErrMissingAuthHeader:
				message = "Not authorized, no token"
			case ErrInvalidAuthFormat:
				message = "Invalid authorization header format"
			case ErrEmptyToken:
				message = "Empty token"
			}
			s.respondWithError(c, http.StatusUnauthorized, err, message)
			return
		}

		claims, err := s.signer.ValidateToken(token)
		if err != nil {
			s.respondWithError(c, http.StatusUnauthorized, ErrInvalidToken, "Not authorized, token failed")
			return
		}

		s.mu.Lock()
		_, exists := s.members[claims.UserID]
		s.mu.Unlock()
		if !exists {
			s.respondWithError(c, http.StatusUnauthorized, ErrMemberNotFound, "Member not found")
			return
		}

		p := auth.PrincipalFromClaims(claims)
		setPrincipal(c, &p)

		c.Next()
	}
}
