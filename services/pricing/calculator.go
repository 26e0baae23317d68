package pricing

import (
	"time"

	"vidaview/models"
	"vidaview/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator turns a unit, a date range and an optional discount into a
// ChargeBreakdown. It holds only platform constants and is safe for
// concurrent use.
type Calculator struct {
	AdminFee           int64
	UtilityDepositRate decimal.Decimal
}

func NewCalculator(adminFee int64, utilityDepositRate decimal.Decimal) *Calculator {
	return &Calculator{AdminFee: adminFee, UtilityDepositRate: utilityDepositRate}
}

// MonthsBetween counts whole calendar months from start to end. Day of month
// is ignored.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}

func roundUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Price computes the itemised charge for staying in unit from start to end.
// Derived amounts are rounded half-up to whole currency units before they are
// summed, so the components always add up to Total.
func (c *Calculator) Price(unit models.Unit, start, end time.Time, discount *models.DiscountDescriptor) (models.ChargeBreakdown, error) {
	start, end = utils.Date(start), utils.Date(end)
	if !end.After(start) {
		return models.ChargeBreakdown{}, utils.NewAppError(utils.KindInvalidRange, "end date must be after start date")
	}

	months := MonthsBetween(start, end)
	if months < unit.MinimumStayMonths {
		return models.ChargeBreakdown{}, utils.NewAppErrorf(utils.KindBelowMinimumStay,
			"stay of %d months is below the minimum of %d", months, unit.MinimumStayMonths)
	}

	monthlyRate := roundUnits(unit.MonthlyRate)
	breakdown := models.ChargeBreakdown{
		MonthlyRate:    monthlyRate,
		TotalMonths:    months,
		RentSubtotal:   monthlyRate * int64(months),
		DepositAmount:  roundUnits(unit.EffectiveDeposit()),
		UtilityDeposit: roundUnits(decimal.NewFromInt(monthlyRate).Mul(c.UtilityDepositRate)),
		AdminFee:       c.AdminFee,
	}
	breakdown.Subtotal = breakdown.RentSubtotal + breakdown.DepositAmount + breakdown.UtilityDeposit + breakdown.AdminFee

	if discount != nil {
		breakdown.DiscountAmount = DiscountAmount(breakdown.Subtotal, *discount)
		breakdown.PromotionCode = discount.Code
	}
	breakdown.Total = breakdown.Subtotal - breakdown.DiscountAmount
	return breakdown, nil
}

// DiscountAmount applies discount to subtotal, clamped to [0, subtotal].
func DiscountAmount(subtotal int64, discount models.DiscountDescriptor) int64 {
	var amount int64
	switch discount.Kind {
	case models.PromotionPercent:
		amount = roundUnits(decimal.NewFromInt(subtotal).Mul(discount.Value).Div(hundred))
	case models.PromotionFixedAmount:
		amount = roundUnits(discount.Value)
	}
	if amount < 0 {
		return 0
	}
	if amount > subtotal {
		return subtotal
	}
	return amount
}
