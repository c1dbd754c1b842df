package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/models"
	"github.com/asalkic/zgrada-server/internal/service"
)

const principalKey = "principal"

// AuthMiddleware returns a Gin middleware that validates the bearer token
// and stores the caller's Principal in the request context. Role checks
// happen in the service layer, not here.
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid token format")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			abortUnauthorized(c, "Invalid role in token")
			return
		}

		principal := service.Principal{UserID: userID, Role: role}
		// JSON numbers decode as float64.
		if apartmentID, ok := claims["apartment_id"].(float64); ok {
			id := int64(apartmentID)
			principal.ApartmentID = &id
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Status:  "error",
		Code:    "UNAUTHORIZED",
		Message: message,
	})
	c.Abort()
}

func principalFrom(c *gin.Context) service.Principal {
	return c.MustGet(principalKey).(service.Principal)
}

// RequestIDMiddleware tags every request with an ID, echoed in the
// X-Request-ID response header and attached to log lines.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", c.GetString("requestId")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
