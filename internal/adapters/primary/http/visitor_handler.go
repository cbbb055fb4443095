package http

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// VisitorHandler records page visits and reports the visitor counters.
type VisitorHandler struct {
	visitorService ports.VisitorService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewVisitorHandler creates a new visitor handler
func NewVisitorHandler(
	visitorService ports.VisitorService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *VisitorHandler {
	return &VisitorHandler{
		visitorService: visitorService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "visitor"),
	}
}

// VisitResponse is the counter snapshot returned for each recorded visit.
type VisitResponse struct {
	IsFirstVisit        bool  `json:"is_first_visit"`
	IsFirstOfDay        bool  `json:"is_first_of_day"`
	TotalUniqueVisitors int64 `json:"total_unique_visitors"`
	TodayVisitors       int64 `json:"today_visitors"`
}

// HandleRecordVisit handles POST /api/visit
func (h *VisitorHandler) HandleRecordVisit(w http.ResponseWriter, r *http.Request) {
	identity := clientIdentity(r)

	stats, err := h.visitorService.RecordVisit(r.Context(), identity)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, VisitResponse{
		IsFirstVisit:        stats.IsFirstVisit,
		IsFirstOfDay:        stats.IsFirstOfDay,
		TotalUniqueVisitors: stats.TotalUniqueVisitors,
		TodayVisitors:       stats.TodayVisitors,
	})
}

// clientIdentity derives the caller identity used for uniqueness tracking.
// Behind the reverse proxy the first X-Forwarded-For entry is the real
// client; locally we fall back to the socket address.
func clientIdentity(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := xff
		if idx := strings.Index(xff, ","); idx >= 0 {
			first = xff[:idx]
		}
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
