// README: Park handlers: order submission, snapshots, stats, events.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taxipark/internal/sim"
	"taxipark/internal/types"
)

type ParkHandler struct {
	sim *sim.Simulator
}

func NewParkHandler(s *sim.Simulator) *ParkHandler {
	return &ParkHandler{sim: s}
}

type submitOrderReq struct {
	PickupX    float64 `json:"pickup_x"`
	PickupY    float64 `json:"pickup_y"`
	DropoffX   float64 `json:"dropoff_x"`
	DropoffY   float64 `json:"dropoff_y"`
	PatienceMS int64   `json:"patience_ms"`
}

func (h *ParkHandler) SubmitOrder(c *gin.Context) {
	var req submitOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.PatienceMS < 0 {
		writeError(c, http.StatusBadRequest, "patience_ms must be >= 0")
		return
	}

	client := h.sim.SubmitOrder(
		types.Point{X: req.PickupX, Y: req.PickupY},
		types.Point{X: req.DropoffX, Y: req.DropoffY},
		time.Duration(req.PatienceMS)*time.Millisecond,
	)
	if client == nil {
		writeError(c, http.StatusServiceUnavailable, "order queue full")
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"client_id":   client.ID(),
		"order_token": client.Order().Token(),
		"status":      client.Status(),
	})
}

func (h *ParkHandler) Fleet(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.sim.FleetSnapshot())
}

func (h *ParkHandler) Clients(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.sim.ClientSnapshot())
}

func (h *ParkHandler) Stats(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.sim.Stats())
}

func (h *ParkHandler) Events(c *gin.Context) {
	n := 50
	if v := c.Query("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	writeJSON(c, http.StatusOK, gin.H{"events": h.sim.RecentEvents(n)})
}
