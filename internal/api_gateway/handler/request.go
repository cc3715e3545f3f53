package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jar-backoffice/internal/api_gateway/middleware"
	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/shared"
)

var errMissingOwner = errors.New("request has no authenticated owner")

// caller builds the acting identity from the authenticated context.
// It responds 401 itself when the owner is missing.
func caller(c *gin.Context) (service.Caller, bool) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		_ = c.Error(errMissingOwner)
		RespondUnauthorized(c, "")
		return service.Caller{}, false
	}
	return service.Caller{
		OwnerID:       ownerID,
		ActorID:       middleware.ActorID(c),
		CorrelationID: middleware.GetCorrelationID(c),
	}, true
}

// pathID reads a positive integer path parameter, responding 400 otherwise
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseDate reads an optional YYYY-MM-DD value. Empty yields the zero time.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(shared.DateLayout, raw, loc)
}

// dateRange parses the from/to query pair against the business calendar
func dateRange(q DateRangeQuery, clock service.Clock) (shared.DateRange, error) {
	now := time.Now
	if clock.Now != nil {
		now = clock.Now
	}
	return shared.NewDateRange(q.From, q.To, now(), clock.Location)
}

// respondServiceError maps domain failures onto the envelope.
// Anything not recognised is a 500 with a generic message.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, what string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount{}):
		RespondInvalidAmount(c, err.Error())
	case service.IsNotFound(err):
		RespondNotFound(c, err.Error())
	case service.IsInvalidInput(err):
		RespondBadRequest(c, err.Error())
	case service.IsConflict(err):
		RespondConflict(c, err.Error())
	default:
		logger.Error("Failed to "+what,
			"correlation_id", middleware.GetCorrelationID(c),
			"error", err)
		_ = c.Error(err)
		RespondInternalError(c)
	}
}
