package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidaview/database"
	"vidaview/models"

	"gorm.io/gorm"
)

// GormBookingRepo implements BookingRepository on a relational database.
type GormBookingRepo struct {
	db *gorm.DB
}

func NewGormBookingRepo(db *gorm.DB) *GormBookingRepo {
	return &GormBookingRepo{db: db}
}

func translateGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return database.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return database.ErrDuplicate
	}
	return err
}

func (repo *GormBookingRepo) CreateWithPayment(ctx context.Context, booking *models.Booking, payment *models.Payment) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return translateGormError(err)
		}
		if err := tx.Create(payment).Error; err != nil {
			return translateGormError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return err
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

func (repo *GormBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := repo.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &booking, nil
}

func (repo *GormBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int64, error) {
	query := repo.db.WithContext(ctx).Model(&models.Booking{})
	if filter.TenantID != "" {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.UnitID != "" {
		query = query.Where("unit_id = ?", filter.UnitID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", statusStrings(filter.Statuses))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting bookings: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	var bookings []models.Booking
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching bookings: %w", err)
	}
	return bookings, total, nil
}

func (repo *GormBookingRepo) FindOverlapping(ctx context.Context, unitID string, start, end time.Time, statuses []models.BookingStatus, excludeID string) ([]models.Booking, error) {
	query := repo.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("status IN ?", statusStrings(statuses)).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("error fetching overlapping bookings: %w", err)
	}
	return bookings, nil
}

func (repo *GormBookingRepo) FindEnded(ctx context.Context, status models.BookingStatus, date time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := repo.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", string(status), date).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching ended bookings: %w", err)
	}
	return bookings, nil
}

func (repo *GormBookingRepo) SaveTransition(ctx context.Context, booking *models.Booking, expectedVersion int) error {
	res := repo.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND version = ?", booking.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":           booking.Status,
			"rejection_reason": booking.RejectionReason,
			"version":          booking.Version,
			"updated_at":       booking.UpdatedAt,
			"confirmed_at":     booking.ConfirmedAt,
			"activated_at":     booking.ActivatedAt,
			"completed_at":     booking.CompletedAt,
			"cancelled_at":     booking.CancelledAt,
			"rejected_at":      booking.RejectedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

func (repo *GormBookingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if err := repo.db.WithContext(ctx).Create(payment).Error; err != nil {
		return translateGormError(err)
	}
	return nil
}

func (repo *GormBookingRepo) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := repo.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &payment, nil
}

func (repo *GormBookingRepo) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := repo.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("attempt ASC, created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching payments: %w", err)
	}
	return payments, nil
}

func (repo *GormBookingRepo) QueryPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int64, error) {
	query := repo.db.WithContext(ctx).Model(&models.Payment{})
	if filter.BookingID != "" {
		query = query.Where("booking_id = ?", filter.BookingID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", paymentStatusStrings(filter.Statuses))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting payments: %w", err)
	}

	page, perPage := normalizePage(filter.Page, filter.PerPage)
	var payments []models.Payment
	err := query.
		Order("created_at DESC, id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error fetching payments: %w", err)
	}
	return payments, total, nil
}

func (repo *GormBookingRepo) SavePaymentTransition(ctx context.Context, payment *models.Payment, expectedVersion int) error {
	res := repo.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND version = ?", payment.ID, expectedVersion).
		Updates(map[string]interface{}{
			"method":                payment.Method,
			"status":                payment.Status,
			"transaction_reference": payment.TransactionReference,
			"receipt_attached":      payment.ReceiptAttached,
			"verifier_notes":        payment.VerifierNotes,
			"paid_at":               payment.PaidAt,
			"verified_at":           payment.VerifiedAt,
			"version":               payment.Version,
			"updated_at":            payment.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update payment %s: %w", payment.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrVersionConflict
	}
	return nil
}
