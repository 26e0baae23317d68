package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is a rentable residential unit. It is owned by the listing side of the
// platform; the booking engine only reads it.
type Unit struct {
	ID                string          `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	OwnerID           string          `bson:"owner_id" json:"ownerId" gorm:"index;size:64"`
	UnitNumber        string          `bson:"unit_number" json:"unitNumber"`
	MonthlyRate       decimal.Decimal `bson:"monthly_rate" json:"monthlyRate" gorm:"type:numeric"`
	DepositAmount     decimal.Decimal `bson:"deposit_amount" json:"depositAmount" gorm:"type:numeric"`
	MinimumStayMonths int             `bson:"minimum_stay_months" json:"minimumStayMonths"`
	CreatedAt         time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updatedAt"`
}

// EffectiveDeposit returns the unit's deposit, falling back to one month's rate.
func (u Unit) EffectiveDeposit() decimal.Decimal {
	if u.DepositAmount.IsPositive() {
		return u.DepositAmount
	}
	return u.MonthlyRate
}
