package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/affiliate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInvalidIDErrorMapping(t *testing.T) {
	require.True(t, isInvalidID(&pgconn.PgError{Code: "22P02"}))
	require.False(t, isInvalidID(&pgconn.PgError{Code: "23505"}))
	require.False(t, isInvalidID(errors.New("broken pipe")))
	require.False(t, isInvalidID(nil))
}

func requireDB(t *testing.T) *Repo {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_POSTGRES_DSN not configured, skipping DB-backed test")
	}
	return &Repo{DB: testPool}
}

func createTestUser(t *testing.T, referredBy *string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO users(id, name, email, password_hash, affiliate_code, referred_by_user_id)
		VALUES ($1, $2, $3, 'x', $4, $5)`,
		id, "Test User", id+"@test.local", id[:13], referredBy)
	require.NoError(t, err)
	return id
}

func createTestProduct(t *testing.T, price string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO products(id, name, price) VALUES ($1, $2, $3)`,
		id, "Product "+id, price)
	require.NoError(t, err)
	return id
}

func setCommissionRate(t *testing.T, value string) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `
		INSERT INTO affiliate_settings(setting_name, setting_value) VALUES ($1, $2)
		ON CONFLICT (setting_name) DO UPDATE SET setting_value = EXCLUDED.setting_value`,
		affiliate.SettingCommissionRate, value)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = testPool.Exec(context.Background(), `
			UPDATE affiliate_settings SET setting_value='0.10' WHERE setting_name=$1`,
			affiliate.SettingCommissionRate)
	})
}

func countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, testPool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestSubmitOrderUnknownProductRollsBack(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	referrer := createTestUser(t, nil)
	buyer := createTestUser(t, &referrer)
	good := createTestProduct(t, "19.99")

	_, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{
		{ProductID: good, Quantity: 1},
		{ProductID: uuid.NewString(), Quantity: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)

	// nothing survived the rollback
	require.Zero(t, countRows(t, `SELECT COUNT(*) FROM orders WHERE user_id=$1`, buyer))
	require.Zero(t, countRows(t, `SELECT COUNT(*) FROM affiliate_referrals WHERE referred_user_id=$1`, buyer))
}

func TestSubmitOrderMalformedProductID(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	buyer := createTestUser(t, nil)
	good := createTestProduct(t, "19.99")

	// "abc" is not castable to the uuid column; the buyer still gets the
	// unknown-product answer naming the id, and nothing is persisted.
	_, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{
		{ProductID: good, Quantity: 1},
		{ProductID: "abc", Quantity: 1},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
	require.ErrorContains(t, err, "abc")

	require.Zero(t, countRows(t, `SELECT COUNT(*) FROM orders WHERE user_id=$1`, buyer))
}

func TestSubmitOrderTotalMatchesLineItems(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	buyer := createTestUser(t, nil)
	p1 := createTestProduct(t, "19.99")
	p2 := createTestProduct(t, "29.99")

	// quantity is recorded but deliberately does not multiply into the total
	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{
		{ProductID: p1, Quantity: 3},
		{ProductID: p2, Quantity: 1},
	})
	require.NoError(t, err)
	require.True(t, conf.TotalAmount.Equal(decimal.RequireFromString("49.98")),
		"got total %s", conf.TotalAmount)

	var stored, itemSum decimal.Decimal
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT total_amount FROM orders WHERE id=$1`, conf.OrderID).Scan(&stored))
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT SUM(price_at_purchase) FROM order_items WHERE order_id=$1`, conf.OrderID).Scan(&itemSum))
	require.True(t, stored.Equal(itemSum))

	var qty int
	require.NoError(t, testPool.QueryRow(ctx,
		`SELECT quantity FROM order_items WHERE order_id=$1 AND product_id=$2`, conf.OrderID, p1).Scan(&qty))
	require.Equal(t, 3, qty)
}

func TestSubmitOrderRecordsCommissionForReferredUser(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	setCommissionRate(t, "0.10")
	referrer := createTestUser(t, nil)
	buyer := createTestUser(t, &referrer)
	product := createTestProduct(t, "19.99")

	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)

	var (
		referringID, referredID string
		rate, earned            decimal.Decimal
		status                  string
	)
	require.NoError(t, testPool.QueryRow(ctx, `
		SELECT referring_user_id, referred_user_id, commission_rate_at_referral, commission_earned, status
		FROM affiliate_referrals WHERE referred_order_id=$1`, conf.OrderID).
		Scan(&referringID, &referredID, &rate, &earned, &status))

	require.Equal(t, referrer, referringID)
	require.Equal(t, buyer, referredID)
	require.True(t, rate.Equal(decimal.RequireFromString("0.10")))
	require.True(t, earned.Equal(decimal.RequireFromString("1.999")), "got commission %s", earned)
	require.Equal(t, "pending", status)

	require.Equal(t, 1, countRows(t,
		`SELECT COUNT(*) FROM affiliate_referrals WHERE referred_order_id=$1`, conf.OrderID))
}

func TestSubmitOrderNoCommissionForUnreferredUser(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	buyer := createTestUser(t, nil)
	product := createTestProduct(t, "19.99")

	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)
	require.Zero(t, countRows(t,
		`SELECT COUNT(*) FROM affiliate_referrals WHERE referred_order_id=$1`, conf.OrderID))
}

func TestCommissionRateIsSnapshotted(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	setCommissionRate(t, "0.10")
	referrer := createTestUser(t, nil)
	buyer := createTestUser(t, &referrer)
	product := createTestProduct(t, "100.00")

	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)

	// changing the policy later must not rewrite the recorded rate or amount
	setCommissionRate(t, "0.25")

	var rate, earned decimal.Decimal
	require.NoError(t, testPool.QueryRow(ctx, `
		SELECT commission_rate_at_referral, commission_earned
		FROM affiliate_referrals WHERE referred_order_id=$1`, conf.OrderID).Scan(&rate, &earned))
	require.True(t, rate.Equal(decimal.RequireFromString("0.10")))
	require.True(t, earned.Equal(decimal.RequireFromString("10.00")))

	conf2, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, testPool.QueryRow(ctx, `
		SELECT commission_rate_at_referral FROM affiliate_referrals WHERE referred_order_id=$1`,
		conf2.OrderID).Scan(&rate))
	require.True(t, rate.Equal(decimal.RequireFromString("0.25")))
}

func TestCommissionRateFallbackWhenUnparsable(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	setCommissionRate(t, "not-a-rate")
	referrer := createTestUser(t, nil)
	buyer := createTestUser(t, &referrer)
	product := createTestProduct(t, "50.00")

	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)

	var rate decimal.Decimal
	require.NoError(t, testPool.QueryRow(ctx, `
		SELECT commission_rate_at_referral FROM affiliate_referrals WHERE referred_order_id=$1`,
		conf.OrderID).Scan(&rate))
	require.True(t, rate.Equal(affiliate.DefaultCommissionRate))
}

func TestGetOrderStatus(t *testing.T) {
	repo := requireDB(t)
	ctx := context.Background()

	buyer := createTestUser(t, nil)
	product := createTestProduct(t, "9.99")
	conf, err := repo.SubmitOrderTx(ctx, buyer, validCustomer(), []CartItem{{ProductID: product, Quantity: 1}})
	require.NoError(t, err)

	st, err := repo.GetOrderStatus(ctx, conf.OrderID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, st)

	_, err = repo.GetOrderStatus(ctx, uuid.NewString())
	require.Error(t, err)
}
