package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zaimka/internal/database"
	"zaimka/internal/halfday"
	"zaimka/internal/metrics"
	"zaimka/internal/models"
)

func (s *HTTPServer) handleGetCabin(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.publicCabin(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cabin)
}

func (s *HTTPServer) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.publicCabin(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month; expected 1-12")
		return
	}

	days, err := s.db.GetMonthCalendar(r.Context(), cabin.ID, year, time.Month(month))
	if err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to build calendar")
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"calendar": days})
}

type bookRequestBody struct {
	halfday.BookingRequest
	GuestName  string `json:"guestName"`
	GuestPhone string `json:"guestPhone"`
	GuestEmail string `json:"guestEmail"`
	Comment    string `json:"comment"`
}

type segmentResult struct {
	StartDate models.Date `json:"startDate"`
	EndDate   models.Date `json:"endDate"`
	Status    string      `json:"status"` // created, unavailable
	BookingID int64       `json:"booking_id,omitempty"`
}

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.publicCabin(w, r)
	if !ok {
		return
	}

	// Booking submissions get an extra shared limit so a burst from one
	// address cannot flood the owner with pending requests.
	if allowed, err := s.sessions.CheckRateLimit(r.Context(), "book:"+s.clientKey(r),
		models.RateLimitRequests, models.RateLimitWindow*time.Second); err == nil && !allowed {
		writeError(w, http.StatusTooManyRequests, "too many booking attempts")
		return
	}

	var body bookRequestBody
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(body.GuestName) == "" || strings.TrimSpace(body.GuestPhone) == "" {
		writeError(w, http.StatusBadRequest, "guestName and guestPhone are required")
		return
	}

	segments, err := body.NormalizedSegments()
	if err == halfday.ErrEmptySelection {
		writeError(w, http.StatusBadRequest, "no dates selected")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := s.validateSegments(cabin, segments); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	guest := database.GuestDetails{
		Name:    strings.TrimSpace(body.GuestName),
		Phone:   strings.TrimSpace(body.GuestPhone),
		Email:   strings.TrimSpace(body.GuestEmail),
		Comment: strings.TrimSpace(body.Comment),
	}

	// Segments are booked independently: accepted ones stand even when a
	// later one is taken. The caller decides what to do with a partial
	// outcome.
	results := make([]segmentResult, 0, len(segments))
	created := 0
	for _, seg := range segments {
		res := segmentResult{StartDate: seg.StartDate, EndDate: seg.EndDate}
		booking, err := s.db.CreateBookingFromSegment(r.Context(), cabin, seg, guest)
		switch {
		case err == nil:
			res.Status = "created"
			res.BookingID = booking.ID
			created++
			metrics.IncBookingCreated()
		case errors.Is(err, database.ErrNotAvailable):
			res.Status = "unavailable"
			metrics.IncSegmentRejected()
		default:
			s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to create booking")
			writeError(w, http.StatusInternalServerError, "failed to create booking")
			return
		}
		results = append(results, res)
	}

	if created == 0 {
		writeErrorDetails(w, http.StatusConflict, "selected dates are not available", results)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"created": created,
		"failed":  len(segments) - created,
		"results": results,
	})
}

// validateSegments applies the booking rules: no past dates, a bounded
// horizon, and whole days only for cabins without half-day booking.
func (s *HTTPServer) validateSegments(cabin *models.Cabin, segments []halfday.Segment) string {
	today := models.DateOf(time.Now())
	horizon := today.AddDays(s.cfg.Booking.MaxBookingDays)

	for _, seg := range segments {
		if seg.StartDate.Before(today) {
			return "cannot book dates in the past"
		}
		if horizon.Before(seg.EndDate) {
			return "booking too far in advance"
		}
		if !cabin.HalfDayEnabled && (seg.StartHalf != halfday.CodeAM || seg.EndHalf != halfday.CodePM) {
			return "cabin accepts whole-day bookings only"
		}
	}
	return ""
}

func (s *HTTPServer) handlePublicLegends(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "company slug is required")
		return
	}

	activeOnly := r.URL.Query().Get("active") == "true"
	legends, err := s.db.ListLegends(r.Context(), slug, activeOnly)
	if err != nil {
		s.logger.Error().Err(err).Str("company", slug).Msg("failed to list legends")
		writeError(w, http.StatusInternalServerError, "failed to list legends")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"legends": legends})
}

// publicCabin resolves the {slug} path segment to an active cabin.
func (s *HTTPServer) publicCabin(w http.ResponseWriter, r *http.Request) (*models.Cabin, bool) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		writeError(w, http.StatusBadRequest, "cabin slug is required")
		return nil, false
	}

	cabin, err := s.db.GetCabinBySlug(r.Context(), slug)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "cabin not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get cabin")
		writeError(w, http.StatusInternalServerError, "failed to get cabin")
		return nil, false
	}
	if !cabin.IsActive {
		writeError(w, http.StatusNotFound, "cabin not found")
		return nil, false
	}
	return cabin, true
}
