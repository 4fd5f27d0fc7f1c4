package httpserver

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/quotidianapp/quotidian/internal/service"
)

// contextUserIDKey stores the authenticated user ID in the gin context.
const contextUserIDKey = "user_id"

// AuthRequired ensures the request carries a valid bearer token.
func AuthRequired(auth service.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			respondErr(ctx, http.StatusUnauthorized, 40101, "missing bearer token")
			ctx.Abort()
			return
		}
		uid, err := auth.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			respondErr(ctx, http.StatusUnauthorized, 40102, "invalid token")
			ctx.Abort()
			return
		}
		ctx.Set(contextUserIDKey, uid)
		ctx.Next()
	}
}

// userID extracts the authenticated user from the gin context.
func userID(ctx *gin.Context) (uuid.UUID, bool) {
	v, ok := ctx.Get(contextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	uid, ok := v.(uuid.UUID)
	return uid, ok
}

// Logging logs request metadata, never payloads.
func Logging(log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Info("http",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", ctx.ClientIP()),
		)
	}
}

// Recovery turns panics into a 500 and logs the stack.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", ctx.FullPath()),
				)
				respondErr(ctx, http.StatusInternalServerError, 50000, "internal")
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}
