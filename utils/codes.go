package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	BookingCodePrefix = "BK"
	PaymentCodePrefix = "PAY"
)

// randomDigits returns n cryptographically random decimal digits.
func randomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

// GenerateCode builds a human-readable code: prefix, yyyymmdd, six digits.
func GenerateCode(prefix string, at time.Time) (string, error) {
	digits, err := randomDigits(6)
	if err != nil {
		return "", err
	}
	return prefix + at.Format("20060102") + digits, nil
}

func GenerateBookingCode(at time.Time) (string, error) {
	return GenerateCode(BookingCodePrefix, at)
}

func GeneratePaymentCode(at time.Time) (string, error) {
	return GenerateCode(PaymentCodePrefix, at)
}
