package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no transition leaves this status.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingCompleted, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status holds the unit's calendar.
func (s BookingStatus) Occupies() bool {
	return s == BookingConfirmed || s == BookingActive
}

// Booking is a tenant's request to rent a unit for a date range. Charge is
// frozen at creation and never recomputed.
type Booking struct {
	ID              string          `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	BookingCode     string          `bson:"booking_code" json:"bookingCode" gorm:"uniqueIndex;size:32"`
	UnitID          string          `bson:"unit_id" json:"unitId" gorm:"index;size:64"`
	OwnerID         string          `bson:"owner_id" json:"ownerId" gorm:"size:64"`
	TenantID        string          `bson:"tenant_id" json:"tenantId" gorm:"index;size:64"`
	StartDate       time.Time       `bson:"start_date" json:"startDate"`
	EndDate         time.Time       `bson:"end_date" json:"endDate"`
	Charge          ChargeBreakdown `bson:"charge" json:"charge" gorm:"embedded;embeddedPrefix:charge_"`
	Status          BookingStatus   `bson:"status" json:"status" gorm:"index;size:16"`
	RejectionReason string          `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Version         int             `bson:"version" json:"version"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
	ConfirmedAt     *time.Time      `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	ActivatedAt     *time.Time      `bson:"activated_at,omitempty" json:"activatedAt,omitempty"`
	CompletedAt     *time.Time      `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt     *time.Time      `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	RejectedAt      *time.Time      `bson:"rejected_at,omitempty" json:"rejectedAt,omitempty"`
}

// Overlaps reports whether the booking's [StartDate, EndDate) range intersects [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && start.Before(b.EndDate)
}

// BookingFilter narrows booking listings. Zero values match everything.
type BookingFilter struct {
	TenantID string
	UnitID   string
	Statuses []BookingStatus
	Page     int
	PerPage  int
}
