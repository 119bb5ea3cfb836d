package handlers

import (
	"errors"
	"net/http"
	"time"

	"polarflow/models"
	"polarflow/services/booking"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingFlowHandler exposes the booking flow session endpoints.
type BookingFlowHandler struct {
	Flow   booking.FlowService
	Logger *zap.Logger
}

// NewBookingFlowHandler builds a BookingFlowHandler.
func NewBookingFlowHandler(flow booking.FlowService, logger *zap.Logger) *BookingFlowHandler {
	return &BookingFlowHandler{Flow: flow, Logger: logger}
}

// StartSession creates a new booking flow session. Guests may start a
// session by supplying an email; signed-in customers inherit theirs.
func (h *BookingFlowHandler) StartSession(c *gin.Context) {
	var input struct {
		CustomerEmail string `json:"customer_email"`
	}
	// Body is optional for signed-in customers.
	_ = c.ShouldBindJSON(&input)

	email := c.GetString("userEmail")
	if email == "" {
		email = input.CustomerEmail
	}

	session, err := h.Flow.Start(c.Request.Context(), c.GetString("userID"), email)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to start booking session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// GetSession returns the current flow session state.
func (h *BookingFlowHandler) GetSession(c *gin.Context) {
	session, err := h.Flow.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// UpdateSession applies step data to the session.
func (h *BookingFlowHandler) UpdateSession(c *gin.Context) {
	var input booking.FlowUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Flow.Update(c.Request.Context(), c.Param("sessionID"), input)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// AdvanceSession attempts to move the flow to the requested step.
func (h *BookingFlowHandler) AdvanceSession(c *gin.Context) {
	var input struct {
		Step string `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Flow.Advance(c.Request.Context(), c.Param("sessionID"), input.Step)
	if err != nil {
		h.respondFlowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// CancelSession destroys the flow session.
func (h *BookingFlowHandler) CancelSession(c *gin.Context) {
	if err := h.Flow.Cancel(c.Request.Context(), c.Param("sessionID")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// ValidateBooking reports every missing field of a candidate booking plus
// both date/time rule failures, so the UI can highlight all of them at
// once.
func (h *BookingFlowHandler) ValidateBooking(c *gin.Context) {
	var input struct {
		ServiceType   string     `json:"serviceType"`
		ScheduledAt   *time.Time `json:"scheduledAt"`
		Address       *struct {
			Line1 string `json:"line1"`
			City  string `json:"city"`
		} `json:"address"`
		SetupFeeCents int64 `json:"setupFeeCents"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	data := booking.BookingData{
		ServiceType:   input.ServiceType,
		SetupFeeCents: input.SetupFeeCents,
	}
	if input.ScheduledAt != nil {
		data.ScheduledAt = *input.ScheduledAt
	}
	if input.Address != nil {
		data.Address = &models.Address{Line1: input.Address.Line1, City: input.Address.City}
	}

	result := booking.ValidateBookingData(data)

	var timeErrors []string
	if input.ScheduledAt != nil {
		if !booking.IsValidBookingTime(*input.ScheduledAt, time.Now()) {
			timeErrors = append(timeErrors, "bookings require at least 2 hours notice")
		}
		if !booking.IsWithinBusinessHours(*input.ScheduledAt) {
			timeErrors = append(timeErrors, "visits start between 8:00 AM and 8:00 PM")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"isValid":       result.IsValid && len(timeErrors) == 0,
		"missingFields": result.MissingFields,
		"timeErrors":    timeErrors,
	})
}

func (h *BookingFlowHandler) respondFlowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking session not found or expired", "")
	case errors.Is(err, booking.ErrFlowIncomplete):
		utils.JSONError(c, http.StatusBadRequest, "previous steps must be completed first", "")
	case errors.Is(err, booking.ErrUnknownServiceType):
		utils.JSONError(c, http.StatusBadRequest, "unknown service type", "")
	default:
		h.Logger.Error("booking flow error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "booking session error", "")
	}
}
