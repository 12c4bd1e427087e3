package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zaimka/internal/halfday"
	"zaimka/internal/models"
)

// GuestDetails carries the form fields attached to a booking request.
type GuestDetails struct {
	Name    string
	Phone   string
	Email   string
	Comment string
}

// CreateBookingFromSegment validates one request segment against approved
// bookings and blocks inside a transaction and stores it as a pending
// booking. Pending bookings never conflict with each other.
func (db *DB) CreateBookingFromSegment(ctx context.Context, cabin *models.Cabin, seg halfday.Segment, guest GuestDetails) (*models.Booking, error) {
	start, end := seg.Interval()

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var overlaps int
	queryOverlaps := `SELECT COUNT(*) FROM bookings
		WHERE cabin_id = ? AND status = ? AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryOverlaps, cabin.ID, models.BookingApproved, end, start).Scan(&overlaps)
	if err != nil {
		return nil, fmt.Errorf("failed to check booking overlap in tx: %w", err)
	}
	if overlaps > 0 {
		return nil, ErrNotAvailable
	}

	var blocked int
	queryBlocked := `SELECT COUNT(*) FROM blocks WHERE cabin_id = ? AND date >= ? AND date <= ?`
	lastDate := models.DateOf(end.Add(-time.Second))
	err = tx.QueryRowContext(ctx, queryBlocked, cabin.ID, seg.StartDate.String(), lastDate.String()).Scan(&blocked)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocks in tx: %w", err)
	}
	if blocked > 0 {
		return nil, ErrNotAvailable
	}

	booking := &models.Booking{
		CabinID:    cabin.ID,
		CabinName:  cabin.Name,
		GuestName:  guest.Name,
		GuestPhone: guest.Phone,
		GuestEmail: guest.Email,
		StartTime:  start,
		EndTime:    end,
		Status:     models.BookingPending,
		Comment:    guest.Comment,
	}

	queryInsert := `INSERT INTO bookings (
				cabin_id, cabin_name, guest_name, guest_phone, guest_email,
				start_time, end_time, status, comment, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.CabinID,
		booking.CabinName,
		booking.GuestName,
		booking.GuestPhone,
		booking.GuestEmail,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.Comment,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return booking, nil
}

// ApproveBooking moves a pending booking to approved, re-validating that no
// other approved booking took the dates in the meantime.
func (db *DB) ApproveBooking(ctx context.Context, bookingID int64) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBookingRow(tx.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, bookingID))
	if err != nil {
		return err
	}
	if booking.Status != models.BookingPending {
		return fmt.Errorf("%w: cannot approve booking in status %s", ErrConflict, booking.Status)
	}

	var overlaps int
	queryOverlaps := `SELECT COUNT(*) FROM bookings
		WHERE cabin_id = ? AND status = ? AND id != ? AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryOverlaps,
		booking.CabinID, models.BookingApproved, booking.ID, booking.EndTime, booking.StartTime).Scan(&overlaps)
	if err != nil {
		return fmt.Errorf("failed to check overlap on approve: %w", err)
	}
	if overlaps > 0 {
		return ErrNotAvailable
	}

	_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		models.BookingApproved, time.Now(), booking.ID)
	if err != nil {
		return fmt.Errorf("failed to approve booking: %w", err)
	}
	return tx.Commit()
}

// RejectBooking moves a pending booking to rejected.
func (db *DB) RejectBooking(ctx context.Context, bookingID int64) error {
	return db.transitionBooking(ctx, bookingID, models.BookingRejected, models.BookingPending)
}

// CancelBooking cancels a pending or approved booking.
func (db *DB) CancelBooking(ctx context.Context, bookingID int64) error {
	return db.transitionBooking(ctx, bookingID, models.BookingCancelled, models.BookingPending, models.BookingApproved)
}

func (db *DB) transitionBooking(ctx context.Context, bookingID int64, to string, from ...string) error {
	booking, err := db.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	allowed := false
	for _, s := range from {
		if booking.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: cannot move booking from %s to %s", ErrConflict, booking.Status, to)
	}

	_, err = db.db.ExecContext(ctx, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		to, time.Now(), bookingID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

const selectBooking = `SELECT id, cabin_id, cabin_name, guest_name, guest_phone,
	guest_email, start_time, end_time, status, comment, created_at, updated_at
	FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookingRow(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	var email, comment sql.NullString
	err := row.Scan(
		&booking.ID,
		&booking.CabinID,
		&booking.CabinName,
		&booking.GuestName,
		&booking.GuestPhone,
		&email,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&comment,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	booking.GuestEmail = email.String
	booking.Comment = comment.String
	return &booking, nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return scanBookingRow(db.db.QueryRowContext(ctx, selectBooking+` WHERE id = ?`, id))
}

// ListBookings returns the cabin's bookings intersecting [from, to) ordered
// by start time, all statuses included so the dashboard can show pending ones.
func (db *DB) ListBookings(ctx context.Context, cabinID int64, from, to time.Time) ([]models.Booking, error) {
	query := selectBooking + ` WHERE cabin_id = ? AND start_time < ? AND end_time > ? ORDER BY start_time`
	rows, err := db.db.QueryContext(ctx, query, cabinID, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}

// ListCompanyBookings returns bookings across all of a company's cabins for
// the export worker.
func (db *DB) ListCompanyBookings(ctx context.Context, companySlug string, from, to time.Time) ([]models.Booking, error) {
	query := selectBooking + ` WHERE cabin_id IN (SELECT id FROM cabins WHERE company_slug = ?)
		AND start_time < ? AND end_time > ? ORDER BY start_time`
	rows, err := db.db.QueryContext(ctx, query, companySlug, to, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list company bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}
	return bookings, rows.Err()
}
