package models

import "time"

// InvoiceLine is one itemised amount on an invoice. Discount lines are negative.
type InvoiceLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Invoice is the read-only snapshot handed to document renderers.
type Invoice struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	BookingID     string        `json:"bookingId"`
	BookingCode   string        `json:"bookingCode"`
	PaymentID     string        `json:"paymentId"`
	PaymentCode   string        `json:"paymentCode"`
	TenantID      string        `json:"tenantId"`
	UnitID        string        `json:"unitId"`
	PeriodStart   time.Time     `json:"periodStart"`
	PeriodEnd     time.Time     `json:"periodEnd"`
	TotalMonths   int           `json:"totalMonths"`
	Lines         []InvoiceLine `json:"lines"`
	Subtotal      int64         `json:"subtotal"`
	Discount      int64         `json:"discount"`
	Total         int64         `json:"total"`
	AmountPaid    int64         `json:"amountPaid"`
	BookingStatus BookingStatus `json:"bookingStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Final         bool          `json:"final"`
	IssuedAt      time.Time     `json:"issuedAt"`
}
