package models

import "time"

const (
	NotificationBooking = "booking"
	NotificationPayment = "payment"
)

// Notification is an in-app message for a tenant or owner. Type is
// "booking" or "payment"; RelatedID points at the booking or payment.
type Notification struct {
	ID        string    `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	UserID    string    `bson:"user_id" json:"userId" gorm:"index;size:64"`
	Type      string    `bson:"type" json:"type" gorm:"size:16"`
	Event     string    `bson:"event" json:"event" gorm:"size:32"`
	RelatedID string    `bson:"related_id" json:"relatedId" gorm:"size:64"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// NotificationFilter pages through one user's notifications. A nil Read
// matches both read and unread.
type NotificationFilter struct {
	UserID  string
	Read    *bool
	Page    int
	PerPage int
}
