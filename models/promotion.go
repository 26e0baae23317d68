package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PromotionKind string

const (
	PromotionPercent     PromotionKind = "percent"
	PromotionFixedAmount PromotionKind = "fixed_amount"
)

func (k PromotionKind) IsValid() bool {
	return k == PromotionPercent || k == PromotionFixedAmount
}

// Promotion is a discount code managed by administrators. ActiveFrom and
// ActiveUntil are inclusive civil dates.
type Promotion struct {
	ID          string          `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	Code        string          `bson:"code" json:"code" gorm:"uniqueIndex;size:64"`
	Title       string          `bson:"title" json:"title"`
	Description string          `bson:"description,omitempty" json:"description,omitempty"`
	Kind        PromotionKind   `bson:"kind" json:"kind" gorm:"size:16"`
	Value       decimal.Decimal `bson:"value" json:"value" gorm:"type:numeric"`
	ActiveFrom  time.Time       `bson:"active_from" json:"activeFrom"`
	ActiveUntil time.Time       `bson:"active_until" json:"activeUntil"`
	Enabled     bool            `bson:"enabled" json:"enabled"`
	CreatedAt   time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updated_at" json:"updatedAt"`
}

// NormalizeCode is the canonical form codes are stored and matched in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// UsableOn reports whether the promotion is enabled and date falls inside its window.
func (p Promotion) UsableOn(date time.Time) bool {
	if !p.Enabled {
		return false
	}
	d := truncateDay(date)
	return !d.Before(truncateDay(p.ActiveFrom)) && !d.After(truncateDay(p.ActiveUntil))
}

// Descriptor snapshots the discount terms of the promotion.
func (p Promotion) Descriptor() DiscountDescriptor {
	return DiscountDescriptor{Kind: p.Kind, Value: p.Value, Code: p.Code}
}

// DiscountDescriptor is the immutable result of validating a promotion code.
type DiscountDescriptor struct {
	Kind  PromotionKind   `json:"kind"`
	Value decimal.Decimal `json:"value"`
	Code  string          `json:"code"`
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
