package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-timetable-api/internal/middleware"
	"github.com/noah-isme/campus-timetable-api/pkg/middleware/requestid"
)

// actorFields identifies the caller in write logs.
func actorFields(c *gin.Context) []zap.Field {
	fields := []zap.Field{zap.String("request_id", requestid.Value(c))}
	if claims, ok := middleware.CurrentClaims(c); ok {
		fields = append(fields, zap.String("user_id", claims.UserID), zap.String("role", string(claims.Role)))
	}
	return fields
}
