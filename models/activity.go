package models

import "time"

const (
	ActivityBooking = "booking"
	ActivityPayment = "payment"
)

// ActivityLog records one committed state change. OldData and NewData hold
// JSON snapshots of the entity before and after; OldData is empty on create.
type ActivityLog struct {
	ID         string    `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	EntityType string    `bson:"entity_type" json:"entityType" gorm:"index:idx_activity_entity;size:16"`
	EntityID   string    `bson:"entity_id" json:"entityId" gorm:"index:idx_activity_entity;size:64"`
	Action     string    `bson:"action" json:"action" gorm:"size:16"`
	FromStatus string    `bson:"from_status,omitempty" json:"fromStatus,omitempty" gorm:"size:16"`
	ToStatus   string    `bson:"to_status" json:"toStatus" gorm:"size:16"`
	OldData    string    `bson:"old_data,omitempty" json:"oldData,omitempty"`
	NewData    string    `bson:"new_data" json:"newData"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}
