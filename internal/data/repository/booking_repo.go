package repository

import (
	"context"
	"errors"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const activeSlotIndex = "idx_bookings_active_slot"

type BookingRepository interface {
	// Create fails with apperr.ErrSlotConflict when the slot already holds an
	// active booking. The check is the storage layer's unique index.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindActiveBySlot(ctx context.Context, slotKey string) (*entity.Booking, error)
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error

	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
	FindNextActiveByUser(ctx context.Context, userID string, after time.Time) (*entity.Booking, error)

	// FindUpcoming lists bookings starting at or after `after`, earliest first.
	// An empty status matches every status.
	FindUpcoming(ctx context.Context, after time.Time, limit int, status entity.BookingStatus) ([]*entity.Booking, error)
	FindActiveInRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewBookingRepository(db database.DBTX, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, slot_key, user_id, user_name, user_email, dog_name,
		       start_time, end_time, status, created_at, cancelled_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.SlotKey,
		&booking.UserID,
		&booking.UserName,
		&booking.UserEmail,
		&booking.DogName,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.CreatedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) queryBookings(ctx context.Context, op, query string, args ...any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query bookings", zap.String("op", op), zap.Error(err))
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, storageErr("scan booking row", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}

	return bookings, nil
}

func (r *bookingRepository) findOne(ctx context.Context, op, query string, args ...any) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.String("op", op), zap.Error(err))
		return nil, storageErr(op, err)
	}
	return booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.SlotKey,
		booking.UserID,
		booking.UserName,
		booking.UserEmail,
		booking.DogName,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.CreatedAt,
		booking.CancelledAt,
	)

	if isUniqueViolation(err, activeSlotIndex) {
		r.log.Info("Slot already booked", zap.String("slot", booking.SlotKey))
		return apperr.ErrSlotConflict
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("slot", booking.SlotKey),
			zap.String("user_id", booking.UserID),
		)
		return storageErr("create booking", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`
	return r.findOne(ctx, "find booking by ID", query, id)
}

func (r *bookingRepository) FindActiveBySlot(ctx context.Context, slotKey string) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE slot_key = $1 AND status = 'booked'
	`
	return r.findOne(ctx, "find booking by slot", query, slotKey)
}

func (r *bookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1 AND status = 'booked'
	`

	result, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		r.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return storageErr("cancel booking", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.ErrBookingNotActive
	}

	return nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryBookings(ctx, "find bookings by user", query, userID, limit, offset)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user", zap.Error(err), zap.String("user_id", userID))
		return 0, storageErr("count bookings by user", err)
	}
	return count, nil
}

func (r *bookingRepository) FindNextActiveByUser(ctx context.Context, userID string, after time.Time) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND status = 'booked' AND start_time >= $2
		ORDER BY start_time ASC
		LIMIT 1
	`
	return r.findOne(ctx, "find next booking by user", query, userID, after)
}

func (r *bookingRepository) FindUpcoming(ctx context.Context, after time.Time, limit int, status entity.BookingStatus) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE start_time >= $1 AND ($2 = '' OR status = $2)
		ORDER BY start_time ASC, created_at ASC
		LIMIT $3
	`
	return r.queryBookings(ctx, "find upcoming bookings", query, after, string(status), limit)
}

func (r *bookingRepository) FindActiveInRange(ctx context.Context, from, to time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'booked' AND start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC
	`
	return r.queryBookings(ctx, "find bookings in range", query, from, to)
}
