package affiliate

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusRejected:
		return true
	}
	return false
}

// Referral is a commission record, created at most once per order by checkout
// and mutated afterwards only through the admin status workflow.
type Referral struct {
	ID                       string          `json:"id"`
	ReferringUserID          string          `json:"referring_user_id"`
	ReferredUserID           string          `json:"referred_user_id"`
	ReferredOrderID          string          `json:"referred_order_id"`
	CommissionRateAtReferral decimal.Decimal `json:"commission_rate_at_referral"`
	CommissionEarned         decimal.Decimal `json:"commission_earned"`
	Status                   Status          `json:"status"`
	CreatedAt                time.Time       `json:"created_at"`
}

// ReferralOrderRow is a referral joined with its order, as listed to the
// referring affiliate.
type ReferralOrderRow struct {
	ReferredOrderID          string          `json:"referred_order_id"`
	CommissionEarned         decimal.Decimal `json:"commission_earned"`
	CommissionRateAtReferral decimal.Decimal `json:"commission_rate_at_referral"`
	CommissionStatus         Status          `json:"commission_status"`
	CommissionDate           time.Time       `json:"commission_date"`
	OrderDate                time.Time       `json:"order_date"`
	OrderTotalAmount         decimal.Decimal `json:"order_total_amount"`
}

// AdminReferralRow adds the affiliate and customer identities for the admin view.
type AdminReferralRow struct {
	ReferralID               string          `json:"referral_id"`
	CommissionEarned         decimal.Decimal `json:"commission_earned"`
	CommissionRateAtReferral decimal.Decimal `json:"commission_rate_at_referral"`
	CommissionStatus         Status          `json:"commission_status"`
	CommissionDate           time.Time       `json:"commission_date"`
	OrderID                  string          `json:"order_id"`
	OrderDate                time.Time       `json:"order_date"`
	OrderTotalAmount         decimal.Decimal `json:"order_total_amount"`
	AffiliateName            string          `json:"affiliate_name"`
	AffiliateEmail           string          `json:"affiliate_email"`
	CustomerName             string          `json:"customer_name"`
	CustomerEmail            string          `json:"customer_email"`
}

// Stats aggregates an affiliate's referral activity.
type Stats struct {
	TotalReferralsSignedUp        int             `json:"total_referrals_signed_up"`
	TotalReferredOrders           int             `json:"total_referred_orders"`
	TotalCommissionPending        decimal.Decimal `json:"total_commission_pending"`
	TotalCommissionPaidOrApproved decimal.Decimal `json:"total_commission_paid_or_approved"`
	AffiliateLink                 string          `json:"affiliate_link"`
}
