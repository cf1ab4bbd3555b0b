package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"

	"warranty/internal/ledger"
	"warranty/internal/warranty/models"
	"warranty/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

const warrantyColumns = `id, serial_number, product_name, product_model, manufacturer, retailer,
	customer_address, manufacturer_address, retailer_address, warranty_period_days,
	purchase_date, token_id, transaction_hash, metadata_uri, is_active, created_at, updated_at`

// PostgresStore persists warranty records in PostgreSQL. The table's unique
// constraints on serial_number and token_id are the authority for duplicates.
type PostgresStore struct {
	db    *sql.DB
	clock Clock
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...Option) *PostgresStore {
	o := newOptions(opts)
	return &PostgresStore{db: db, clock: o.clock}
}

func (s *PostgresStore) Insert(ctx context.Context, w *models.Warranty) error {
	query := `INSERT INTO warranties (` + warrantyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := s.db.ExecContext(ctx, query,
		w.ID,
		w.SerialNumber,
		w.ProductName,
		w.ProductModel,
		w.Manufacturer,
		w.Retailer,
		models.NormalizeAddress(w.CustomerAddress),
		w.ManufacturerAddress,
		w.RetailerAddress,
		w.WarrantyPeriodDays,
		w.PurchaseDate,
		nullableTokenID(w.TokenID),
		w.TransactionHash,
		w.MetadataURI,
		w.Active,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return fmt.Errorf("warranty %q violates %s: %w", w.SerialNumber, constraint, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert warranty: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySerial(ctx context.Context, serial string) (*models.Warranty, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+warrantyColumns+` FROM warranties WHERE serial_number = $1`, serial)
	w, err := scanWarranty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find warranty by serial: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) FindByTokenID(ctx context.Context, tokenID ledger.TokenID) (*models.Warranty, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+warrantyColumns+` FROM warranties WHERE token_id = $1`, int64(tokenID))
	w, err := scanWarranty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("token id %s: %w", tokenID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find warranty by token id: %w", err)
	}
	return w, nil
}

// FindByCustomer returns the customer's records, newest first.
func (s *PostgresStore) FindByCustomer(ctx context.Context, customer string) ([]*models.Warranty, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+warrantyColumns+` FROM warranties
		WHERE customer_address = $1
		ORDER BY created_at DESC, serial_number`,
		models.NormalizeAddress(customer))
	if err != nil {
		return nil, fmt.Errorf("find warranties by customer: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Warranty, 0)
	for rows.Next() {
		w, err := scanWarranty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan warranty: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warranties: %w", err)
	}
	return out, nil
}

// AttachTokenID sets the token id of a record that has none. Re-attaching the
// same id is a no-op.
func (s *PostgresStore) AttachTokenID(ctx context.Context, serial string, tokenID ledger.TokenID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE warranties SET token_id = $2, updated_at = $3
		WHERE serial_number = $1 AND token_id IS NULL`,
		serial, int64(tokenID), s.clock())
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return fmt.Errorf("token id %s already attached: %w", tokenID, sentinel.ErrConflict)
		}
		return fmt.Errorf("attach token id: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return nil
	}

	var current sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT token_id FROM warranties WHERE serial_number = $1`, serial).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("attach token id: %w", err)
	}
	if current.Valid && current.Int64 == int64(tokenID) {
		return nil
	}
	return fmt.Errorf("serial number %q already has token id %d: %w", serial, current.Int64, sentinel.ErrInvalidState)
}

func (s *PostgresStore) SetActive(ctx context.Context, serial string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE warranties SET is_active = $2, updated_at = $3 WHERE serial_number = $1`,
		serial, active, s.clock())
	if err != nil {
		return fmt.Errorf("set warranty active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set warranty active: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("serial number %q: %w", serial, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWarranty(row scanner) (*models.Warranty, error) {
	var (
		w       models.Warranty
		tokenID sql.NullInt64
	)
	err := row.Scan(
		&w.ID,
		&w.SerialNumber,
		&w.ProductName,
		&w.ProductModel,
		&w.Manufacturer,
		&w.Retailer,
		&w.CustomerAddress,
		&w.ManufacturerAddress,
		&w.RetailerAddress,
		&w.WarrantyPeriodDays,
		&w.PurchaseDate,
		&tokenID,
		&w.TransactionHash,
		&w.MetadataURI,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tokenID.Valid {
		id := ledger.TokenID(tokenID.Int64)
		w.TokenID = &id
	}
	w.PurchaseDate = w.PurchaseDate.UTC()
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return &w, nil
}

func nullableTokenID(id *ledger.TokenID) sql.NullInt64 {
	if id == nil || uint64(*id) > math.MaxInt64 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
