package models

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentVerifying PaymentStatus = "verifying"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

// PaymentKind is informational and does not affect the payment state machine.
type PaymentKind string

const (
	PaymentKindDeposit     PaymentKind = "deposit"
	PaymentKindMonthlyRent PaymentKind = "monthly_rent"
	PaymentKindPenalty     PaymentKind = "penalty"
	PaymentKindRefund      PaymentKind = "refund"
	PaymentKindUtility     PaymentKind = "utility"
)

func (k PaymentKind) IsValid() bool {
	switch k {
	case PaymentKindDeposit, PaymentKindMonthlyRent, PaymentKindPenalty, PaymentKindRefund, PaymentKindUtility:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodEWallet      PaymentMethod = "e_wallet"
	MethodCash         PaymentMethod = "cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodBankTransfer, MethodCard, MethodEWallet, MethodCash:
		return true
	}
	return false
}

// Payment is one payment attempt against a booking. The primary attempt
// carries the booking total; Attempt counts retries after a failed one.
// At most one primary payment exists per (BookingID, Attempt).
type Payment struct {
	ID                   string        `bson:"id" json:"id" gorm:"primaryKey;size:64"`
	PaymentCode          string        `bson:"payment_code" json:"paymentCode" gorm:"uniqueIndex;size:32"`
	BookingID            string        `bson:"booking_id" json:"bookingId" gorm:"index;size:64;uniqueIndex:idx_payments_primary_attempt,where:is_primary"`
	Kind                 PaymentKind   `bson:"kind" json:"kind" gorm:"size:16"`
	Amount               int64         `bson:"amount" json:"amount"`
	Method               PaymentMethod `bson:"method,omitempty" json:"method,omitempty" gorm:"size:16"`
	Status               PaymentStatus `bson:"status" json:"status" gorm:"index;size:16"`
	TransactionReference string        `bson:"transaction_reference,omitempty" json:"transactionReference,omitempty"`
	ReceiptAttached      bool          `bson:"receipt_attached" json:"receiptAttached"`
	VerifierNotes        string        `bson:"verifier_notes,omitempty" json:"verifierNotes,omitempty"`
	IsPrimary            bool          `bson:"is_primary" json:"isPrimary"`
	Attempt              int           `bson:"attempt" json:"attempt" gorm:"uniqueIndex:idx_payments_primary_attempt,where:is_primary"`
	DueDate              time.Time     `bson:"due_date" json:"dueDate"`
	PaidAt               *time.Time    `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	VerifiedAt           *time.Time    `bson:"verified_at,omitempty" json:"verifiedAt,omitempty"`
	Version              int           `bson:"version" json:"version"`
	CreatedAt            time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time     `bson:"updated_at" json:"updatedAt"`
}

// PaymentFilter narrows admin payment listings. Zero values match everything.
type PaymentFilter struct {
	BookingID string
	Statuses  []PaymentStatus
	Page      int
	PerPage   int
}
