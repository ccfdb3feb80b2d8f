package middleware

import (
	"net/http"
	"strings"
	"time"

	"ticketpay/pkg/apperror"
	"ticketpay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxUserID    = "user_id"
	CtxUserRole  = "user_role"
	CtxRequestID = "request_id"

	RoleOrganizer = "organizer"
	RoleBuyer     = "buyer"
)

// IdentityClaims are the claims issued by the auth service. This service
// never issues tokens; it only validates them.
type IdentityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the bearer token issued by the auth service and stores
// the caller's identity on the request context.
func JWTAuth(secret, issuer string, log zerolog.Logger) gin.HandlerFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(authHeader[7:], claims, keyFunc,
			jwt.WithIssuer(issuer),
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil || !token.Valid {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated caller has the role.
// Must run after JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserRole) != role {
			response.Error(c, apperror.ErrNotEligible())
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RequestID assigns each request an id for response envelopes and log
// correlation, honoring an inbound X-Request-ID from a trusted proxy.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
