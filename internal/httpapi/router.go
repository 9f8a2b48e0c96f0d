package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rankboard/internal/metrics"
)

// NewRouter builds the Gin engine exposing the three public endpoints plus
// the ambient health and metrics routes.
func NewRouter(svc *Service, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(cors())
	r.Use(accessLog(log))

	r.POST("/customer/:id/score/:delta", svc.updateScore)
	r.GET("/leaderboard", svc.rangeLeaderboard)
	r.GET("/leaderboard/:id", svc.neighborsLeaderboard)

	r.GET("/healthz", svc.healthz)
	r.GET("/readyz", svc.readyz)
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, metrics.Render())
	})

	return r
}
