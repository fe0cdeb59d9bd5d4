package checkout

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := o.Quote
	_, err = psql.Insert("orders").SetMap(map[string]any{
		"id":         o.ID,
		"email":      o.Email,
		"subtotal":   sq.Expr("?::numeric", q.Subtotal),
		"shipping":   sq.Expr("?::numeric", q.Shipping),
		"tax":        sq.Expr("?::numeric", q.Tax),
		"total":      sq.Expr("?::numeric", q.Total),
		"currency":   q.Currency,
		"status":     o.Status,
		"created_at": o.CreatedAt,
	}).RunWith(tx).ExecContext(ctx)
	if err != nil {
		return err
	}

	if len(q.Lines) > 0 {
		ins := psql.Insert("order_lines").
			Columns("order_id", "position", "product_id", "name", "unit_price", "quantity", "line_total")
		for i, l := range q.Lines {
			ins = ins.Values(o.ID, i, l.ProductID, l.Name,
				sq.Expr("?::numeric", l.UnitPrice), l.Quantity, sq.Expr("?::numeric", l.LineTotal))
		}
		if _, err := ins.RunWith(tx).ExecContext(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var o Order
	err := psql.Select("id", "email", "subtotal::text", "shipping::text", "tax::text", "total::text",
		"currency", "status", "created_at").
		From("orders").
		Where(sq.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&o.ID, &o.Email, &o.Quote.Subtotal, &o.Quote.Shipping, &o.Quote.Tax, &o.Quote.Total,
			&o.Quote.Currency, &o.Status, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	o.CreatedAt = o.CreatedAt.UTC()

	query, args, err := psql.Select("product_id", "name", "unit_price::text", "quantity", "line_total::text").
		From("order_lines").
		Where(sq.Eq{"order_id": id}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return Order{}, false, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Order{}, false, err
	}
	defer rows.Close()

	lines := make([]QuoteLine, 0, 4)
	for rows.Next() {
		var l QuoteLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.UnitPrice, &l.Quantity, &l.LineTotal); err != nil {
			return Order{}, false, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return Order{}, false, err
	}
	o.Quote.Lines = lines

	return o, true, nil
}
