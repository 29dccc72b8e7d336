package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plundell/stabelo-elevator/internal/bank"
	"github.com/plundell/stabelo-elevator/internal/elevio"
)

// stateResponse is the wire form of one IO state.
type stateResponse struct {
	State string     `json:"state"`
	At    *int       `json:"at,omitempty"`
	From  *int       `json:"from,omitempty"`
	To    *int       `json:"to,omitempty"`
	Start time.Time  `json:"start"`
	Due   *time.Time `json:"due,omitempty"`
}

func toStateResponse(st elevio.State) stateResponse {
	resp := stateResponse{State: st.Kind.String(), Start: st.Start}
	if f, ok := st.AtFloor(); ok {
		at := int(f)
		resp.At = &at
	}
	if st.Moving() {
		from, to := int(st.From), int(st.To)
		resp.From = &from
		resp.To = &to
	}
	if !st.Due.IsZero() {
		due := st.Due
		resp.Due = &due
	}
	return resp
}

// GetElevators handles GET /api/elevators.
func (h *Handler) GetElevators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"elevators": h.bank.ListElevators()})
}

// GetElevatorState handles GET /api/elevators/{elevator_id}/state.
func (h *Handler) GetElevatorState(c *gin.Context) {
	st, err := h.bank.ElevatorState(c.Param("elevator_id"))
	if err != nil {
		if errors.Is(err, bank.ErrDomain) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read state"})
		return
	}
	c.JSON(http.StatusOK, toStateResponse(st))
}

// GetElevatorButtons handles GET /api/elevators/{elevator_id}/buttons.
func (h *Handler) GetElevatorButtons(c *gin.Context) {
	buttons, err := h.bank.PushedButtons(c.Param("elevator_id"))
	if err != nil {
		if errors.Is(err, bank.ErrDomain) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read buttons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"buttons": buttons})
}

// GetAllStates handles GET /api/state.
func (h *Handler) GetAllStates(c *gin.Context) {
	states := h.bank.AllElevatorStates()
	resp := make(map[string]stateResponse, len(states))
	for id, st := range states {
		resp[id] = toStateResponse(st)
	}
	c.JSON(http.StatusOK, resp)
}

// GetAllButtons handles GET /api/buttons.
func (h *Handler) GetAllButtons(c *gin.Context) {
	c.JSON(http.StatusOK, h.bank.AllPushedButtons())
}
