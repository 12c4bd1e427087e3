package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"zaimka/internal/database"
	"zaimka/internal/models"

	"github.com/google/uuid"
)

func (s *HTTPServer) handleListCabins(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	cabins, err := s.db.ListCabins(r.Context(), session.CompanySlug)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list cabins")
		writeError(w, http.StatusInternalServerError, "failed to list cabins")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cabins": cabins})
}

func (s *HTTPServer) handleCreateCabin(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var cabin models.Cabin
	if err := json.NewDecoder(r.Body).Decode(&cabin); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cabin.Slug = strings.TrimSpace(cabin.Slug)
	cabin.Name = strings.TrimSpace(cabin.Name)
	if cabin.Slug == "" || cabin.Name == "" {
		writeError(w, http.StatusBadRequest, "slug and name are required")
		return
	}

	cabin.CompanySlug = session.CompanySlug
	cabin.IsActive = true

	if _, err := s.db.GetCabinBySlug(r.Context(), cabin.Slug); err == nil {
		writeError(w, http.StatusConflict, "cabin slug already exists")
		return
	}

	if err := s.db.CreateCabin(r.Context(), &cabin); err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to create cabin")
		writeError(w, http.StatusInternalServerError, "failed to create cabin")
		return
	}

	writeJSON(w, http.StatusCreated, cabin)
}

func (s *HTTPServer) handleUpdateCabin(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.ownerCabin(w, r)
	if !ok {
		return
	}

	var body struct {
		Name           *string `json:"name"`
		Description    *string `json:"description"`
		HalfDayEnabled *bool   `json:"half_day_enabled"`
		IsActive       *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil {
		if strings.TrimSpace(*body.Name) == "" {
			writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		cabin.Name = strings.TrimSpace(*body.Name)
	}
	if body.Description != nil {
		cabin.Description = *body.Description
	}
	if body.HalfDayEnabled != nil {
		cabin.HalfDayEnabled = *body.HalfDayEnabled
	}
	if body.IsActive != nil {
		cabin.IsActive = *body.IsActive
	}

	if err := s.db.UpdateCabin(r.Context(), cabin); err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to update cabin")
		writeError(w, http.StatusInternalServerError, "failed to update cabin")
		return
	}

	writeJSON(w, http.StatusOK, cabin)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.ownerCabin(w, r)
	if !ok {
		return
	}

	// Default window: previous month through two months ahead.
	now := time.Now().UTC()
	from := now.AddDate(0, -models.DefaultExportRangeMonthsBefore, 0)
	to := now.AddDate(0, models.DefaultExportRangeMonthsAfter, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		date, err := models.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		from = date.Time
	}
	if v := r.URL.Query().Get("to"); v != "" {
		date, err := models.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to = date.Time
	}

	bookings, err := s.db.ListBookings(r.Context(), cabin.ID, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to list bookings")
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	s.transitionBooking(w, r, models.BookingApproved, s.db.ApproveBooking)
}

func (s *HTTPServer) handleRejectBooking(w http.ResponseWriter, r *http.Request) {
	s.transitionBooking(w, r, models.BookingRejected, s.db.RejectBooking)
}

func (s *HTTPServer) transitionBooking(w http.ResponseWriter, r *http.Request, to string, apply func(ctx context.Context, id int64) error) {
	session := sessionFrom(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.db.GetBooking(r.Context(), id)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("failed to get booking")
		writeError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}

	cabin, err := s.db.GetCabinByID(r.Context(), booking.CabinID)
	if err != nil || cabin.CompanySlug != session.CompanySlug {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}

	err = apply(r.Context(), id)
	if errors.Is(err, database.ErrConflict) {
		writeError(w, http.StatusConflict, "booking is not pending")
		return
	}
	if errors.Is(err, database.ErrNotAvailable) {
		writeError(w, http.StatusConflict, "dates are no longer available")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", id).Msg("failed to transition booking")
		writeError(w, http.StatusInternalServerError, "failed to update booking")
		return
	}

	booking.Status = to
	s.logger.Info().Int64("booking_id", id).Str("status", to).Msg("Booking status changed")
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleBlockDate(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.ownerCabin(w, r)
	if !ok {
		return
	}

	var body struct {
		Date   models.Date `json:"date"`
		Reason string      `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Date.IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		reason = models.StatusUnavailable
	}
	if !builtinReason(reason) {
		legend, err := s.db.GetLegend(r.Context(), reason)
		if err != nil || legend.CompanySlug != sessionFrom(r.Context()).CompanySlug {
			writeError(w, http.StatusBadRequest, "unknown block reason")
			return
		}
	}

	block := &models.Block{CabinID: cabin.ID, Date: body.Date, Reason: reason}
	if err := s.db.CreateBlock(r.Context(), block); err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to block date")
		writeError(w, http.StatusInternalServerError, "failed to block date")
		return
	}

	writeJSON(w, http.StatusCreated, block)
}

func builtinReason(reason string) bool {
	switch reason {
	case models.StatusMaintenance, models.StatusUnavailable:
		return true
	}
	return false
}

func (s *HTTPServer) handleUnblockDate(w http.ResponseWriter, r *http.Request) {
	cabin, ok := s.ownerCabin(w, r)
	if !ok {
		return
	}

	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.DeleteBlock(r.Context(), cabin.ID, date)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "date is not blocked")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("slug", cabin.Slug).Msg("failed to unblock date")
		writeError(w, http.StatusInternalServerError, "failed to unblock date")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unblocked"})
}

func (s *HTTPServer) handleListLegends(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	activeOnly := r.URL.Query().Get("active") == "true"

	legends, err := s.db.ListLegends(r.Context(), session.CompanySlug, activeOnly)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list legends")
		writeError(w, http.StatusInternalServerError, "failed to list legends")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"legends": legends})
}

func (s *HTTPServer) handleCreateLegend(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var legend models.Legend
	if err := json.NewDecoder(r.Body).Decode(&legend); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	legend.Name = strings.TrimSpace(legend.Name)
	if legend.Name == "" {
		writeError(w, http.StatusBadRequest, "legend name is required")
		return
	}
	if legend.Color == "" {
		writeError(w, http.StatusBadRequest, "legend color is required")
		return
	}

	legend.ID = uuid.NewString()
	legend.CompanySlug = session.CompanySlug
	legend.IsDefault = false
	legend.IsActive = true

	if err := s.db.CreateLegend(r.Context(), &legend); err != nil {
		s.logger.Error().Err(err).Msg("failed to create legend")
		writeError(w, http.StatusInternalServerError, "failed to create legend")
		return
	}

	writeJSON(w, http.StatusCreated, legend)
}

func (s *HTTPServer) handleUpdateLegend(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	id := r.PathValue("id")

	legend, err := s.db.GetLegend(r.Context(), id)
	if err == database.ErrNotFound || (err == nil && legend.CompanySlug != session.CompanySlug) {
		writeError(w, http.StatusNotFound, "legend not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get legend")
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Color    *string `json:"color"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		legend.Name = strings.TrimSpace(*body.Name)
	}
	if body.Color != nil {
		legend.Color = *body.Color
	}
	if body.IsActive != nil {
		legend.IsActive = *body.IsActive
	}

	if err := s.db.UpdateLegend(r.Context(), legend); err != nil {
		s.logger.Error().Err(err).Str("legend", id).Msg("failed to update legend")
		writeError(w, http.StatusInternalServerError, "failed to update legend")
		return
	}

	writeJSON(w, http.StatusOK, legend)
}

func (s *HTTPServer) handleDeleteLegend(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	id := r.PathValue("id")

	err := s.db.DeleteLegend(r.Context(), id, session.CompanySlug)
	if err == database.ErrNotFound {
		writeError(w, http.StatusNotFound, "legend not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("legend", id).Msg("failed to delete legend")
		writeError(w, http.StatusInternalServerError, "failed to delete legend")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if s.exports == nil {
		writeError(w, http.StatusServiceUnavailable, "exports are disabled")
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, -models.DefaultExportRangeMonthsBefore, 0)
	to := now.AddDate(0, models.DefaultExportRangeMonthsAfter, 0)

	taskID, err := s.exports.EnqueueExport(session.CompanySlug, from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to enqueue export")
		writeError(w, http.StatusServiceUnavailable, "export queue is full")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

// ownerCabin resolves {slug} and checks it belongs to the session's company.
func (s *HTTPServer) ownerCabin(w http.ResponseWriter, r *http.Request) (*models.Cabin, bool) {
	session := sessionFrom(r.Context())
	slug := strings.TrimSpace(r.PathValue("slug"))

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
	if cabin.CompanySlug != session.CompanySlug {
		writeError(w, http.StatusForbidden, "cabin belongs to another company")
		return nil, false
	}
	return cabin, true
}
