package models

// ChargeBreakdown is the itemised price of a booking in integral currency
// units. It is frozen onto a booking when the booking is created.
type ChargeBreakdown struct {
	MonthlyRate    int64  `bson:"monthly_rate" json:"monthlyRate"`
	TotalMonths    int    `bson:"total_months" json:"totalMonths"`
	RentSubtotal   int64  `bson:"rent_subtotal" json:"rentSubtotal"`
	DepositAmount  int64  `bson:"deposit_amount" json:"depositAmount"`
	UtilityDeposit int64  `bson:"utility_deposit" json:"utilityDeposit"`
	AdminFee       int64  `bson:"admin_fee" json:"adminFee"`
	Subtotal       int64  `bson:"subtotal" json:"subtotal"`
	DiscountAmount int64  `bson:"discount_amount" json:"discountAmount"`
	PromotionCode  string `bson:"promotion_code,omitempty" json:"promotionCode,omitempty" gorm:"size:64"`
	Total          int64  `bson:"total" json:"total"`
}

// Consistent reports whether every derived amount agrees with its components.
func (c ChargeBreakdown) Consistent() bool {
	if c.RentSubtotal != c.MonthlyRate*int64(c.TotalMonths) {
		return false
	}
	if c.Subtotal != c.RentSubtotal+c.DepositAmount+c.UtilityDeposit+c.AdminFee {
		return false
	}
	if c.DiscountAmount < 0 || c.DiscountAmount > c.Subtotal {
		return false
	}
	return c.Total == c.Subtotal-c.DiscountAmount
}
