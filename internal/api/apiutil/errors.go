package apiutil

import (
	"errors"
	"net/http"

	"github.com/harborlight/tourbook/internal/booking"
)

// StatusForBookingError maps resolver errors to HTTP statuses.
// Availability data problems are service unavailability, invalidated
// selections are conflicts, and pricing gaps block checkout as
// unprocessable rather than quoting zero.
func StatusForBookingError(err error) int {
	switch {
	case errors.Is(err, booking.ErrNotReady), errors.Is(err, booking.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, booking.ErrDateBlocked), errors.Is(err, booking.ErrTimeBlocked):
		return http.StatusConflict
	case errors.Is(err, booking.ErrIncompletePricingData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, booking.ErrInvalidQuantity):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
