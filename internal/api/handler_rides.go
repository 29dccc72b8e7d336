package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/floor"
)

type postRideRequest struct {
	Pickup  *int `json:"pickup" binding:"required"`
	Dropoff *int `json:"dropoff"`
}

type postRideResponse struct {
	Elevator string `json:"elevator"`
}

// PostRide handles the POST /api/rides request: dispatch a ride and report
// which elevator took it.
func (h *Handler) PostRide(c *gin.Context) {
	var req postRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var dropoff *floor.Floor
	if req.Dropoff != nil {
		d := floor.Floor(*req.Dropoff)
		dropoff = &d
	}

	id, err := h.bank.AddRide(floor.Floor(*req.Pickup), dropoff)
	if err != nil {
		switch {
		case errors.Is(err, floor.ErrInvalidFloor):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, bank.ErrDomain):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.Printf("api: dispatch failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		}
		return
	}

	if h.recorder != nil {
		h.recorder.RecordRide(id, *req.Pickup, req.Dropoff)
	}

	c.JSON(http.StatusCreated, postRideResponse{Elevator: id})
}
