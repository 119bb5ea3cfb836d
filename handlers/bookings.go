package handlers

import (
	"errors"
	"net/http"

	bookingRepo "polarflow/database/repository/booking"
	"polarflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves persisted bookings.
type BookingHandler struct {
	Bookings bookingRepo.BookingRepository
	Logger   *zap.Logger
}

// NewBookingHandler builds a BookingHandler.
func NewBookingHandler(repo bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: repo, Logger: logger}
}

// ListMyBookings returns the authenticated customer's bookings.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	userID := c.GetString("userID")
	bookings, err := h.Bookings.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to list bookings", zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking returns one booking; customers may only read their own.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", "")
			return
		}
		h.Logger.Error("failed to load booking", zap.String("id", c.Param("id")), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking", "")
		return
	}

	if b.UserID != "" && b.UserID != c.GetString("userID") {
		utils.JSONError(c, http.StatusForbidden, "access denied", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
