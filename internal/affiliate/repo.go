package affiliate

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrReferralNotFound = errors.New("referral not found")

func (r *Repo) Stats(ctx context.Context, userID string) (Stats, error) {
	var st Stats
	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE referred_by_user_id=$1),
			(SELECT COUNT(*) FROM affiliate_referrals WHERE referring_user_id=$1),
			(SELECT COALESCE(SUM(commission_earned), 0) FROM affiliate_referrals
			   WHERE referring_user_id=$1 AND status='pending'),
			(SELECT COALESCE(SUM(commission_earned), 0) FROM affiliate_referrals
			   WHERE referring_user_id=$1 AND status IN ('paid', 'approved'))
	`, userID).Scan(
		&st.TotalReferralsSignedUp,
		&st.TotalReferredOrders,
		&st.TotalCommissionPending,
		&st.TotalCommissionPaidOrApproved,
	)
	if err != nil {
		return Stats{}, err
	}
	return st, nil
}

// ListReferrals returns the affiliate's commission rows joined with their
// orders, newest order first.
func (r *Repo) ListReferrals(ctx context.Context, userID string) ([]ReferralOrderRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ar.referred_order_id, ar.commission_earned, ar.commission_rate_at_referral,
		       ar.status, ar.created_at, o.order_date, o.total_amount
		FROM affiliate_referrals ar
		JOIN orders o ON ar.referred_order_id = o.id
		WHERE ar.referring_user_id = $1
		ORDER BY o.order_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReferralOrderRow
	for rows.Next() {
		var rr ReferralOrderRow
		if err := rows.Scan(&rr.ReferredOrderID, &rr.CommissionEarned, &rr.CommissionRateAtReferral,
			&rr.CommissionStatus, &rr.CommissionDate, &rr.OrderDate, &rr.OrderTotalAmount); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func (r *Repo) ListAllReferrals(ctx context.Context) ([]AdminReferralRow, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ar.id, ar.commission_earned, ar.commission_rate_at_referral, ar.status, ar.created_at,
		       o.id, o.order_date, o.total_amount,
		       au.name, au.email,
		       cu.name, cu.email
		FROM affiliate_referrals ar
		JOIN users au ON ar.referring_user_id = au.id
		JOIN users cu ON ar.referred_user_id = cu.id
		JOIN orders o ON ar.referred_order_id = o.id
		ORDER BY ar.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminReferralRow
	for rows.Next() {
		var rr AdminReferralRow
		if err := rows.Scan(&rr.ReferralID, &rr.CommissionEarned, &rr.CommissionRateAtReferral,
			&rr.CommissionStatus, &rr.CommissionDate,
			&rr.OrderID, &rr.OrderDate, &rr.OrderTotalAmount,
			&rr.AffiliateName, &rr.AffiliateEmail,
			&rr.CustomerName, &rr.CustomerEmail); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// UpdateReferralStatus is the admin workflow mutation; checkout never touches a
// referral row again after creating it.
func (r *Repo) UpdateReferralStatus(ctx context.Context, referralID string, status Status) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE affiliate_referrals SET status=$1 WHERE id=$2`, status, referralID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrReferralNotFound
	}
	return nil
}
