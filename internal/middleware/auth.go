package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
)

// deviceClaims are the token claims issued at device login: the owning
// user as subject plus the device the token was minted for.
type deviceClaims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id"`
}

// AuthMiddleware creates a Gin middleware handler that validates JWT
// tokens and rejects tokens minted for devices that have since been
// revoked.
func AuthMiddleware(jwtSecret string, authSvc portssvc.AuthSvcFacade) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		tokenString := parts[1]

		// Parse and validate the token
		token, err := jwt.ParseWithClaims(tokenString, &deviceClaims{}, func(token *jwt.Token) (interface{}, error) {
			// Check the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})

		if err != nil {
			logger.Warn("Invalid token", "error", err)
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		claims, ok := token.Claims.(*deviceClaims)
		if !ok || !token.Valid {
			logger.Warn("Invalid token claims or token is not valid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		userID := claims.Subject
		if userID == "" {
			logger.Error("User ID (subject) missing from valid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		// A revoked device invalidates its outstanding tokens immediately.
		if claims.DeviceID != "" && authSvc != nil {
			if _, err := authSvc.ResolveDevice(c.Request.Context(), claims.DeviceID); err != nil {
				logger.Warn("Token device no longer valid",
					slog.String("device_id", claims.DeviceID),
					slog.String("error", err.Error()))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Device has been revoked"})
				return
			}
		}

		// Store the user ID in the context (using standard context)
		ctxWithUser := context.WithValue(c.Request.Context(), userIDKey, userID)
		if claims.DeviceID != "" {
			ctxWithUser = context.WithValue(ctxWithUser, deviceIDKey, claims.DeviceID)
		}

		// Add identity to the logger
		enrichedLogger := logger.With(slog.String("user_id", userID))
		if claims.DeviceID != "" {
			enrichedLogger = enrichedLogger.With(slog.String("device_id", claims.DeviceID))
		}

		// Store the *enriched* logger back into the standard context
		ctxWithLoggerAndUser := context.WithValue(ctxWithUser, loggerCtxKey, enrichedLogger)

		// Update the request context
		c.Request = c.Request.WithContext(ctxWithLoggerAndUser)

		c.Next()
	}
}
