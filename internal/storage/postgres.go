package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukerupert/harvansh/internal"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

const cartItemColumns = `id, cart_id, product_id, quantity, variant, created_at, updated_at`

// PostgresStore keeps cart items in the cart_items table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

var _ CartStore = (*PostgresStore)(nil)

// OpenPostgres runs pending migrations and connects a pgx pool.
func OpenPostgres(ctx context.Context, databaseURL string, logger zerolog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	logger.Info().Msg("Running database migrations...")
	if err := internal.RunMigrations(db); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresStore{pool: pool, logger: logger}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.CartItem, error) {
	var item domain.CartItem
	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.Variant, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (domain.CartItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE id = $1`, id)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartItem{}, ErrNotFound
	}
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("get cart item %d: %w", id, err)
	}
	return item, nil
}

func (s *PostgresStore) Put(ctx context.Context, item domain.CartItem) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cart_items (`+cartItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			cart_id = EXCLUDED.cart_id,
			product_id = EXCLUDED.product_id,
			quantity = EXCLUDED.quantity,
			variant = EXCLUDED.variant,
			updated_at = EXCLUDED.updated_at`,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.Variant, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put cart item %d: %w", item.ID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete cart item %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListByCart(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	return s.query(ctx, `SELECT `+cartItemColumns+` FROM cart_items WHERE cart_id = $1 ORDER BY id`, cartID)
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.CartItem, error) {
	return s.query(ctx, `SELECT `+cartItemColumns+` FROM cart_items ORDER BY id`)
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]domain.CartItem, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) MaxID(ctx context.Context) (int64, error) {
	var max int64
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM cart_items`).Scan(&max); err != nil {
		return 0, fmt.Errorf("max cart item id: %w", err)
	}
	return max, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
