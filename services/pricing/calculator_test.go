package pricing

import (
	"testing"
	"time"

	"vidaview/models"
	"vidaview/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testCalculator() *Calculator {
	return NewCalculator(500000, decimal.RequireFromString("0.20"))
}

func testUnit() models.Unit {
	return models.Unit{
		ID:                "unit-1",
		MonthlyRate:       decimal.NewFromInt(5000000),
		DepositAmount:     decimal.NewFromInt(5000000),
		MinimumStayMonths: 3,
	}
}

func TestPriceNoPromotion(t *testing.T) {
	b, err := testCalculator().Price(testUnit(), date(2025, 1, 1), date(2025, 4, 1), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, b.TotalMonths)
	assert.Equal(t, int64(15000000), b.RentSubtotal)
	assert.Equal(t, int64(5000000), b.DepositAmount)
	assert.Equal(t, int64(1000000), b.UtilityDeposit)
	assert.Equal(t, int64(500000), b.AdminFee)
	assert.Equal(t, int64(21500000), b.Subtotal)
	assert.Equal(t, int64(0), b.DiscountAmount)
	assert.Equal(t, int64(21500000), b.Total)
	assert.Empty(t, b.PromotionCode)
	assert.True(t, b.Consistent())
}

func TestPricePercentPromotion(t *testing.T) {
	discount := &models.DiscountDescriptor{Kind: models.PromotionPercent, Value: decimal.NewFromInt(10), Code: "HEMAT10"}
	b, err := testCalculator().Price(testUnit(), date(2025, 1, 1), date(2025, 4, 1), discount)
	require.NoError(t, err)

	assert.Equal(t, int64(2150000), b.DiscountAmount)
	assert.Equal(t, int64(19350000), b.Total)
	assert.Equal(t, "HEMAT10", b.PromotionCode)
	assert.True(t, b.Consistent())
}

func TestPriceWholeMonthTruncation(t *testing.T) {
	_, err := testCalculator().Price(testUnit(), date(2025, 1, 1), date(2025, 2, 15), nil)
	assert.ErrorIs(t, err, utils.ErrBelowMinimumStay)
}

func TestPriceRangeCheckedBeforeMinimumStay(t *testing.T) {
	calc := testCalculator()

	_, err := calc.Price(testUnit(), date(2025, 4, 1), date(2025, 4, 1), nil)
	assert.ErrorIs(t, err, utils.ErrInvalidRange)

	_, err = calc.Price(testUnit(), date(2025, 4, 1), date(2025, 1, 1), nil)
	assert.ErrorIs(t, err, utils.ErrInvalidRange)
}

func TestPriceDepositFallsBackToMonthlyRate(t *testing.T) {
	unit := testUnit()
	unit.DepositAmount = decimal.Zero
	unit.MinimumStayMonths = 1

	b, err := testCalculator().Price(unit, date(2025, 1, 10), date(2025, 2, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5000000), b.DepositAmount)
}

func TestPriceRoundsHalfUp(t *testing.T) {
	unit := models.Unit{MonthlyRate: decimal.RequireFromString("1234567.5"), MinimumStayMonths: 1}

	b, err := testCalculator().Price(unit, date(2025, 1, 1), date(2025, 2, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1234568), b.MonthlyRate)
	// 0.20 x 1234568 = 246913.6
	assert.Equal(t, int64(246914), b.UtilityDeposit)

	discount := &models.DiscountDescriptor{Kind: models.PromotionPercent, Value: decimal.RequireFromString("12.5")}
	b, err = testCalculator().Price(unit, date(2025, 1, 1), date(2025, 2, 1), discount)
	require.NoError(t, err)
	assert.True(t, b.Consistent())
	expected := decimal.NewFromInt(b.Subtotal).Mul(decimal.RequireFromString("0.125")).Round(0).IntPart()
	assert.Equal(t, expected, b.DiscountAmount)
}

func TestDiscountAmountClamped(t *testing.T) {
	fixed := models.DiscountDescriptor{Kind: models.PromotionFixedAmount, Value: decimal.NewFromInt(50000000)}
	assert.Equal(t, int64(21500000), DiscountAmount(21500000, fixed))

	fixed.Value = decimal.NewFromInt(250000)
	assert.Equal(t, int64(250000), DiscountAmount(21500000, fixed))

	full := models.DiscountDescriptor{Kind: models.PromotionPercent, Value: decimal.NewFromInt(100)}
	assert.Equal(t, int64(21500000), DiscountAmount(21500000, full))
}

func TestPriceBreakdownAlwaysConsistent(t *testing.T) {
	calc := testCalculator()
	rates := []string{"1", "999999.5", "3333333.33", "5000000", "7250001"}
	values := []string{"0.5", "1", "33.33", "50", "99.99", "100"}

	for _, rate := range rates {
		unit := models.Unit{MonthlyRate: decimal.RequireFromString(rate), MinimumStayMonths: 1}
		for months := 1; months <= 24; months += 5 {
			end := date(2025, 1, 1).AddDate(0, months, 0)
			for _, v := range values {
				discount := &models.DiscountDescriptor{Kind: models.PromotionPercent, Value: decimal.RequireFromString(v)}
				b, err := calc.Price(unit, date(2025, 1, 1), end, discount)
				require.NoError(t, err)
				assert.True(t, b.Consistent(), "rate=%s months=%d value=%s", rate, months, v)
				assert.LessOrEqual(t, b.DiscountAmount, b.Subtotal)

				again, err := calc.Price(unit, date(2025, 1, 1), end, discount)
				require.NoError(t, err)
				assert.Equal(t, b, again)
			}
		}
	}
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 3, MonthsBetween(date(2025, 1, 1), date(2025, 4, 1)))
	assert.Equal(t, 1, MonthsBetween(date(2025, 1, 31), date(2025, 2, 1)))
	assert.Equal(t, 13, MonthsBetween(date(2024, 12, 15), date(2026, 1, 2)))
	assert.Equal(t, 0, MonthsBetween(date(2025, 3, 1), date(2025, 3, 28)))
}
