package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no wallet matches an id.
	ErrNotFound = errors.New("wallet not found")
	// ErrAccountNumberTaken signals a unique violation on the account number.
	ErrAccountNumberTaken = errors.New("account number already stored")
	// ErrNameTaken signals a unique violation on the wallet name.
	ErrNameTaken = errors.New("wallet name already stored")
)

const (
	uniqueViolation         = "23505"
	accountNumberConstraint = "wallets_account_number_key"
	nameConstraint          = "wallets_name_key"
)

// Repository persists wallet metadata.
type Repository interface {
	Insert(ctx context.Context, wallet Wallet) (Wallet, error)
	FindByID(ctx context.Context, id string) (Wallet, error)
	DeleteByID(ctx context.Context, id string) (int64, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	CountByOwner(ctx context.Context, owner string) (int, error)
	CountAll(ctx context.Context) (int, error)
	ListPage(ctx context.Context, offset, limit int) ([]Wallet, error)
	ListPageByOwner(ctx context.Context, owner string, offset, limit int) ([]Wallet, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var _ Repository = (*PostgresRepository)(nil)

const walletColumns = `id, name, type, account_number, account_scheme, owner, created_at`

// Insert stores a wallet. Unique constraints on account_number and name turn a
// lost check-then-insert race into ErrAccountNumberTaken / ErrNameTaken.
func (r *PostgresRepository) Insert(ctx context.Context, wallet Wallet) (Wallet, error) {
	walletID, err := uuid.Parse(wallet.ID)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse wallet id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (`+walletColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		walletID, wallet.Name, string(wallet.Type), wallet.AccountNumber, string(wallet.AccountScheme), wallet.Owner, wallet.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case accountNumberConstraint:
				return Wallet{}, ErrAccountNumberTaken
			case nameConstraint:
				return Wallet{}, ErrNameTaken
			}
		}
		return Wallet{}, fmt.Errorf("insert wallet: %w", err)
	}
	return wallet, nil
}

// FindByID fetches wallet metadata by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Wallet, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, walletUUID)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, fmt.Errorf("select wallet: %w", err)
	}
	return w, nil
}

// DeleteByID removes a wallet and reports how many rows went away.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return 0, nil
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM wallets WHERE id = $1`, walletUUID)
	if err != nil {
		return 0, fmt.Errorf("delete wallet: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *PostgresRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE account_number = $1)`, accountNumber)
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE name = $1)`, name)
}

func (r *PostgresRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("wallet exists: %w", err)
	}
	return found, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, owner string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallets WHERE owner = $1`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owner wallets: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM wallets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count wallets: %w", err)
	}
	return n, nil
}

// ListPage returns wallets in insertion order.
func (r *PostgresRepository) ListPage(ctx context.Context, offset, limit int) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets
        ORDER BY created_at, id OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return collectWallets(rows)
}

// ListPageByOwner returns the owner's wallets in insertion order.
func (r *PostgresRepository) ListPageByOwner(ctx context.Context, owner string, offset, limit int) ([]Wallet, error) {
	rows, err := r.db.Query(ctx, `SELECT `+walletColumns+` FROM wallets
        WHERE owner = $1 ORDER BY created_at, id OFFSET $2 LIMIT $3`, owner, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list owner wallets: %w", err)
	}
	return collectWallets(rows)
}

func collectWallets(rows pgx.Rows) ([]Wallet, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Wallet, error) {
		return scanWallet(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan wallets: %w", err)
	}
	return out, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w         Wallet
		id        uuid.UUID
		typ       string
		scheme    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &w.Name, &typ, &w.AccountNumber, &scheme, &w.Owner, &createdAt); err != nil {
		return Wallet{}, err
	}
	w.ID = id.String()
	w.Type = Type(typ)
	w.AccountScheme = Scheme(scheme)
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
