package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	productColumns = []string{
		"id", "name", "description", "price::text", "sale_price::text", "category",
		"image_url", "hover_image_url", "is_on_sale", "is_featured", "tags::text",
	}
	reviewColumns = []string{"id", "product_id", "customer_name", "rating", "title", "content", "date"}
	pairColumns   = []string{"id", "product_id", "before_image_url", "after_image_url", "before_label", "after_label"}
)

// PostgresStore implements Store over the tables created by pkg/migrate.
// The seq column preserves insertion order.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]Product, error) {
	return s.queryProducts(ctx, psql.Select(productColumns...).From("products").OrderBy("seq ASC"))
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (Product, bool, error) {
	out, err := s.queryProducts(ctx, psql.Select(productColumns...).From("products").Where(sq.Eq{"id": id}))
	if err != nil {
		return Product{}, false, err
	}
	if len(out) == 0 {
		return Product{}, false, nil
	}
	return out[0], true, nil
}

func (s *PostgresStore) ListFeaturedProducts(ctx context.Context) ([]Product, error) {
	return s.queryProducts(ctx, psql.Select(productColumns...).From("products").
		Where(sq.Eq{"is_featured": true}).OrderBy("seq ASC"))
}

func (s *PostgresStore) ListProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	return s.queryProducts(ctx, psql.Select(productColumns...).From("products").
		Where(sq.Eq{"category": category}).OrderBy("seq ASC"))
}

func (s *PostgresStore) CreateProduct(ctx context.Context, in NewProduct) (Product, error) {
	p := in.withID(uuid.NewString())
	p.Price = columnMoney(p.Price)
	if p.SalePrice != nil {
		sale := columnMoney(*p.SalePrice)
		p.SalePrice = &sale
	}
	if err := s.insertProduct(ctx, p, false); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) ListReviews(ctx context.Context) ([]Review, error) {
	return s.queryReviews(ctx, psql.Select(reviewColumns...).From("reviews").OrderBy("date DESC", "seq ASC"))
}

func (s *PostgresStore) ListReviewsForProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.queryReviews(ctx, psql.Select(reviewColumns...).From("reviews").
		Where(sq.Eq{"product_id": productID}).OrderBy("date DESC", "seq ASC"))
}

func (s *PostgresStore) CreateReview(ctx context.Context, in NewReview) (Review, error) {
	r := in.withID(uuid.NewString(), s.now())
	if err := s.insertReview(ctx, r, false); err != nil {
		return Review{}, err
	}
	return r, nil
}

func (s *PostgresStore) ListBeforeAfter(ctx context.Context) ([]BeforeAfter, error) {
	return s.queryPairs(ctx, psql.Select(pairColumns...).From("before_after_images").OrderBy("seq ASC"))
}

func (s *PostgresStore) ListBeforeAfterForProduct(ctx context.Context, productID string) ([]BeforeAfter, error) {
	return s.queryPairs(ctx, psql.Select(pairColumns...).From("before_after_images").
		Where(sq.Eq{"product_id": productID}).OrderBy("seq ASC"))
}

func (s *PostgresStore) CreateBeforeAfter(ctx context.Context, in NewBeforeAfter) (BeforeAfter, error) {
	ba := in.withID(uuid.NewString())
	if err := s.insertPair(ctx, ba, false); err != nil {
		return BeforeAfter{}, err
	}
	return ba, nil
}

// Seed inserts the given entities, leaving rows with the same id untouched.
func (s *PostgresStore) Seed(ctx context.Context, products []Product, reviews []Review, pairs []BeforeAfter) error {
	for _, p := range products {
		if err := s.insertProduct(ctx, p, true); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	for _, r := range reviews {
		if err := s.insertReview(ctx, r, true); err != nil {
			return fmt.Errorf("seed review %s: %w", r.ID, err)
		}
	}
	for _, ba := range pairs {
		if err := s.insertPair(ctx, ba, true); err != nil {
			return fmt.Errorf("seed before/after %s: %w", ba.ID, err)
		}
	}
	return nil
}

func (s *PostgresStore) insertProduct(ctx context.Context, p Product, skipExisting bool) error {
	tags, err := pq.StringArray(p.Tags).Value()
	if err != nil {
		return err
	}

	q := psql.Insert("products").SetMap(map[string]any{
		"id":              p.ID,
		"name":            p.Name,
		"description":     p.Description,
		"price":           sq.Expr("?::numeric", p.Price),
		"sale_price":      sq.Expr("?::numeric", p.SalePrice),
		"category":        p.Category,
		"image_url":       p.ImageURL,
		"hover_image_url": p.HoverImageURL,
		"is_on_sale":      p.IsOnSale,
		"is_featured":     p.IsFeatured,
		"tags":            sq.Expr("?::text[]", tags),
	})
	return s.exec(ctx, q, skipExisting)
}

func (s *PostgresStore) insertReview(ctx context.Context, r Review, skipExisting bool) error {
	q := psql.Insert("reviews").SetMap(map[string]any{
		"id":            r.ID,
		"product_id":    r.ProductID,
		"customer_name": r.CustomerName,
		"rating":        r.Rating,
		"title":         r.Title,
		"content":       r.Content,
		"date":          r.Date,
	})
	return s.exec(ctx, q, skipExisting)
}

func (s *PostgresStore) insertPair(ctx context.Context, ba BeforeAfter, skipExisting bool) error {
	q := psql.Insert("before_after_images").SetMap(map[string]any{
		"id":               ba.ID,
		"product_id":       ba.ProductID,
		"before_image_url": ba.BeforeImageURL,
		"after_image_url":  ba.AfterImageURL,
		"before_label":     ba.BeforeLabel,
		"after_label":      ba.AfterLabel,
	})
	return s.exec(ctx, q, skipExisting)
}

// columnMoney renders v the way a NUMERIC(10,2) column reads back, so a
// created product equals its later reads. Unparseable input is left for the
// insert to reject.
func columnMoney(v string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return d.StringFixed(2)
}

func (s *PostgresStore) exec(ctx context.Context, q sq.InsertBuilder, skipExisting bool) error {
	if skipExisting {
		q = q.Suffix("ON CONFLICT (id) DO NOTHING")
	}
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := q.RunWith(s.db).ExecContext(ctx)
		return err
	})
}

func (s *PostgresStore) queryProducts(ctx context.Context, q sq.SelectBuilder) ([]Product, error) {
	out := make([]Product, 0, 16)
	err := s.query(ctx, q, func(rows *sql.Rows) error {
		var (
			p    Product
			tags pq.StringArray
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice, &p.Category,
			&p.ImageURL, &p.HoverImageURL, &p.IsOnSale, &p.IsFeatured, &tags); err != nil {
			return err
		}
		if tags != nil {
			p.Tags = []string(tags)
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) queryReviews(ctx context.Context, q sq.SelectBuilder) ([]Review, error) {
	out := make([]Review, 0, 16)
	err := s.query(ctx, q, func(rows *sql.Rows) error {
		var r Review
		if err := rows.Scan(&r.ID, &r.ProductID, &r.CustomerName, &r.Rating, &r.Title, &r.Content, &r.Date); err != nil {
			return err
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) queryPairs(ctx context.Context, q sq.SelectBuilder) ([]BeforeAfter, error) {
	out := make([]BeforeAfter, 0, 4)
	err := s.query(ctx, q, func(rows *sql.Rows) error {
		var ba BeforeAfter
		if err := rows.Scan(&ba.ID, &ba.ProductID, &ba.BeforeImageURL, &ba.AfterImageURL, &ba.BeforeLabel, &ba.AfterLabel); err != nil {
			return err
		}
		out = append(out, ba)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) query(ctx context.Context, q sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
