package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/affiliate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Repo struct{ DB *pgxpool.Pool }

var ErrProductNotFound = errors.New("product not found")

const pgInvalidTextRepresentation = "22P02"

// isInvalidID reports whether the error is Postgres rejecting a value that
// cannot be cast to the uuid id column. A malformed client-supplied product id
// is an unknown product, not a server fault.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// SubmitOrderTx runs the whole checkout as one transaction: resolve each cart
// line against the live catalog, write the order and its line items, then (when
// the buyer was referred) snapshot the commission rate and record the referral.
// Any failure rolls the whole thing back; no partial order survives.
//
// Each cart line is priced once regardless of the requested quantity; the
// quantity is recorded on the line item but never multiplies into the total
// (one-license-per-line catalog model, kept from the storefront's pricing).
func (r *Repo) SubmitOrderTx(ctx context.Context, userID string, cust CustomerDetails, items []CartItem) (Confirmation, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Confirmation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	total := decimal.Zero
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		var (
			id, name string
			price    decimal.Decimal
		)
		err := tx.QueryRow(ctx, `SELECT id, name, price FROM products WHERE id=$1`, it.ProductID).
			Scan(&id, &name, &price)
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return Confirmation{}, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
		}
		if err != nil {
			return Confirmation{}, err
		}
		total = total.Add(price)
		lines = append(lines, Line{
			ProductID:       id,
			Name:            name,
			Quantity:        NormalizeQuantity(it.Quantity),
			PriceAtPurchase: price,
		})
	}

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_id, total_amount, customer_name, customer_email, customer_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, orderID, userID, total, cust.Name, cust.Email, cust.Phone, StatusPending)
	if err != nil {
		return Confirmation{}, err
	}

	for _, ln := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, product_id, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), orderID, ln.ProductID, ln.Quantity, ln.PriceAtPurchase,
		)
		if err != nil {
			return Confirmation{}, err
		}
	}

	var referrerID *string
	err = tx.QueryRow(ctx, `SELECT referred_by_user_id FROM users WHERE id=$1`, userID).Scan(&referrerID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Confirmation{}, err
	}

	if referrerID != nil {
		rate := resolveCommissionRate(ctx, tx)
		commission := total.Mul(rate)
		_, err = tx.Exec(ctx, `
			INSERT INTO affiliate_referrals(id, referring_user_id, referred_user_id, referred_order_id,
			                                commission_rate_at_referral, commission_earned, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), *referrerID, userID, orderID, rate, commission, affiliate.StatusPending,
		)
		if err != nil {
			return Confirmation{}, err
		}
		log.Info().
			Str("order_id", orderID).
			Str("referring_user_id", *referrerID).
			Str("commission", commission.String()).
			Msg("commission recorded")
	}

	if err := tx.Commit(ctx); err != nil {
		return Confirmation{}, err
	}
	return Confirmation{OrderID: orderID, TotalAmount: total, Lines: lines}, nil
}

// resolveCommissionRate reads the configured rate inside the checkout
// transaction. It has no error outcome: an absent row, an unparsable value or a
// read failure all fall back to the default rate with a log line.
func resolveCommissionRate(ctx context.Context, tx pgx.Tx) decimal.Decimal {
	var raw string
	err := tx.QueryRow(ctx,
		`SELECT setting_value FROM affiliate_settings WHERE setting_name=$1`,
		affiliate.SettingCommissionRate,
	).Scan(&raw)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Err(err).Msg("commission rate read failed, using default")
		} else {
			log.Warn().Msg("no default_commission_rate configured, using default")
		}
		return affiliate.DefaultCommissionRate
	}
	rate, ok := affiliate.ParseRate(raw)
	if !ok {
		log.Warn().Str("setting_value", raw).Msg("unparsable commission rate, using default")
		return affiliate.DefaultCommissionRate
	}
	return rate
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, orderID).Scan(&s)
	if err != nil {
		return "", err
	}
	return Status(s), nil
}
