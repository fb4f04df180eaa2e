package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/redisx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
}

type NewProduct struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
}

var ErrNameTaken = errors.New("product name already exists")

const pgUniqueViolation = "23505"

type Repo struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// List serves the public catalog with a Redis read-through cache; the store
// stays the source of truth.
func (r *Repo) List(ctx context.Context) ([]Product, error) {
	if r.Redis != nil {
		if s, err := r.Redis.Get(ctx, redisx.KeyProductList).Result(); err == nil && s != "" {
			var cached []Product
			if err := json.Unmarshal([]byte(s), &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(image_url, ''), COALESCE(category, ''), created_at
		FROM products ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if b, err := json.Marshal(out); err == nil {
			_ = r.Redis.Set(ctx, redisx.KeyProductList, b, redisx.TTLProductCache).Err()
		}
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, np NewProduct) (Product, error) {
	p := Product{
		ID:          uuid.NewString(),
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		ImageURL:    np.ImageURL,
		Category:    np.Category,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(id, name, description, price, image_url, category)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING COALESCE(image_url, ''), COALESCE(category, ''), created_at`,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category,
	).Scan(&p.ImageURL, &p.Category, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Product{}, ErrNameTaken
		}
		return Product{}, err
	}

	if r.Redis != nil {
		_ = r.Redis.Del(ctx, redisx.KeyProductList).Err()
	}
	return p, nil
}
