// Package httpapi translates the three public endpoints to calls against
// the customer store, coherence controller, and query engine, and exposes
// the ambient health and metrics endpoints alongside them.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rankboard/internal/coherence"
	"rankboard/internal/customerstore"
	"rankboard/internal/metrics"
	"rankboard/internal/query"
	"rankboard/internal/ranking"
)

// Service wires the core components that handlers call into.
type Service struct {
	store      *customerstore.Store
	controller *coherence.Controller
	ready      bool
}

// NewService builds a Service over an already-constructed store and
// controller. ready flips true once the caller considers the core fully
// wired, for use by the readiness probe.
func NewService(store *customerstore.Store, controller *coherence.Controller) *Service {
	return &Service{store: store, controller: controller, ready: true}
}

type rankedCustomerDTO struct {
	CustomerID int64  `json:"customer_id"`
	Score      string `json:"score"`
	Rank       int32  `json:"rank"`
}

func toDTO(entries []ranking.RankedCustomer) []rankedCustomerDTO {
	out := make([]rankedCustomerDTO, len(entries))
	for i, e := range entries {
		out[i] = rankedCustomerDTO{CustomerID: e.CustomerID, Score: e.Score, Rank: e.Rank}
	}
	return out
}

// updateScore handles POST /customer/:id/score/:delta
func (s *Service) updateScore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "id must be a positive integer"})
		metrics.IncUpdateRejected(metrics.RejectReasonBadArgument)
		return
	}

	delta, err := decimal.NewFromString(c.Param("delta"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "delta must be a decimal number"})
		metrics.IncUpdateRejected(metrics.RejectReasonBadArgument)
		return
	}

	newScore, err := s.store.ApplyDelta(id, delta)
	if err != nil {
		if errors.Is(err, customerstore.ErrOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "delta must be between -1000 and 1000"})
			metrics.IncUpdateRejected(metrics.RejectReasonOutOfRange)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		metrics.IncUpdateRejected(metrics.RejectReasonBadArgument)
		return
	}

	s.controller.NoteUpdate()
	metrics.IncUpdate()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"customer_id": id, "score": newScore.String()},
	})
}

// rangeLeaderboard handles GET /leaderboard?start=&end=
func (s *Service) rangeLeaderboard(c *gin.Context) {
	start, errStart := strconv.Atoi(c.DefaultQuery("start", "1"))
	end, errEnd := strconv.Atoi(c.DefaultQuery("end", "50"))
	if errStart != nil || errEnd != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "start and end must be integers"})
		return
	}

	view := s.controller.GetView()
	entries, err := query.Range(view, start, end)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "start must be >= 1 and end must be >= start"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toDTO(entries),
	})
}

// neighborsLeaderboard handles GET /leaderboard/:id?high=&low=
func (s *Service) neighborsLeaderboard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "id must be a positive integer"})
		return
	}

	high, errHigh := strconv.Atoi(c.DefaultQuery("high", "0"))
	low, errLow := strconv.Atoi(c.DefaultQuery("low", "0"))
	if errHigh != nil || errLow != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "high and low must be integers"})
		return
	}

	view := s.controller.GetView()
	entries, err := query.Neighbors(view, id, high, low)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "high and low must be >= 0"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toDTO(entries),
	})
}

func (s *Service) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) readyz(c *gin.Context) {
	if !s.ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// SetReady flips the readiness flag; intended for graceful shutdown to mark
// the service unready before it stops accepting new requests.
func (s *Service) SetReady(ready bool) {
	s.ready = ready
}
