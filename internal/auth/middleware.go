// internal/auth/middleware.go
// JWT authentication middleware and admin-key guard

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/auradating/aura-backend/internal/common/utils"
)

// Claims are the JWT claims carried by access tokens
type Claims struct {
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// Middleware provides authentication middleware
type Middleware struct {
	jwtSecret    []byte
	adminKeyHash string
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(jwtSecret, adminKeyHash string) *Middleware {
	return &Middleware{
		jwtSecret:    []byte(jwtSecret),
		adminKeyHash: adminKeyHash,
	}
}

// Authenticate verifies the JWT token and adds the user ID to the request context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.validateToken(token)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Refresh tokens must not reach protected routes
		if claims.Type != "access" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards admin routes with a pre-shared key compared against a
// bcrypt hash, used after Authenticate
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.adminKeyHash == "" {
			utils.RespondWithError(w, http.StatusForbidden, "Admin access is not configured")
			return
		}

		key := r.Header.Get("X-Admin-Key")
		if key == "" {
			utils.RespondWithError(w, http.StatusForbidden, "Admin key required")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.adminKeyHash), []byte(key)); err != nil {
			utils.RespondWithError(w, http.StatusForbidden, "Invalid admin key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// validateToken parses and verifies a JWT access token
func (m *Middleware) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// extractToken extracts the JWT token from the Authorization header
// Supports "Bearer <token>" format
func (m *Middleware) extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}

	return parts[1]
}

// GetUserIDFromContext extracts user ID from request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value("userID").(int64)
	return userID, ok
}
