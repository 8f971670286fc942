package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/apperrors"
	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portsrepo "github.com/alaalsalam/hisabi-backend/internal/core/ports/repositories"
)

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryFacade
var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

const walletSelectColumns = `w.wallet_id, w.name, w.currency, w.status, w.owner_id, w.created_at`

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(&w.WalletID, &w.Name, &w.Currency, &w.Status, &w.OwnerID, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan wallet row: %w", err)
	}
	return &w, nil
}

func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	query := `
		INSERT INTO wallets (wallet_id, name, currency, status, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		wallet.WalletID,
		wallet.Name,
		wallet.Currency,
		wallet.Status,
		wallet.OwnerID,
		wallet.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: wallet %s", apperrors.ErrDuplicate, wallet.WalletID)
		}
		return fmt.Errorf("failed to save wallet %s: %w", wallet.WalletID, err)
	}
	return nil
}

func (r *PgxWalletRepository) UpdateWallet(ctx context.Context, wallet domain.Wallet) error {
	query := `
		UPDATE wallets
		SET name = $2, currency = $3, status = $4
		WHERE wallet_id = $1;
	`
	result, err := r.Pool.Exec(ctx, query, wallet.WalletID, wallet.Name, wallet.Currency, wallet.Status)
	if err != nil {
		return fmt.Errorf("failed to update wallet %s: %w", wallet.WalletID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: wallet %s", apperrors.ErrNotFound, wallet.WalletID)
	}
	return nil
}

func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletSelectColumns + ` FROM wallets w WHERE w.wallet_id = $1;`
	return scanWallet(r.Pool.QueryRow(ctx, query, walletID))
}

func (r *PgxWalletRepository) ListWalletsByUserID(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `
		SELECT ` + walletSelectColumns + `
		FROM wallets w
		JOIN wallet_members m ON w.wallet_id = m.wallet_id
		WHERE m.user_id = $1 AND m.status = $2
		ORDER BY w.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID, domain.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets for user %s: %w", userID, err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.WalletID, &w.Name, &w.Currency, &w.Status, &w.OwnerID, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}
	return wallets, nil
}

func (r *PgxWalletRepository) AddMember(ctx context.Context, membership domain.WalletMember) error {
	query := `
		INSERT INTO wallet_members (wallet_id, user_id, role, status, joined_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.WalletID,
		membership.UserID,
		membership.Role,
		membership.Status,
		membership.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("%w: user %s is already a member of wallet %s",
				apperrors.ErrDuplicate, membership.UserID, membership.WalletID)
		}
		return fmt.Errorf("failed to add member %s to wallet %s: %w", membership.UserID, membership.WalletID, err)
	}
	return nil
}

func (r *PgxWalletRepository) FindMember(ctx context.Context, walletID, userID string) (*domain.WalletMember, error) {
	query := `
		SELECT wallet_id, user_id, role, status, joined_at
		FROM wallet_members
		WHERE wallet_id = $1 AND user_id = $2;
	`
	var m domain.WalletMember
	err := r.Pool.QueryRow(ctx, query, walletID, userID).Scan(
		&m.WalletID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member %s in wallet %s: %w", userID, walletID, err)
	}
	return &m, nil
}

func (r *PgxWalletRepository) ListMembers(ctx context.Context, walletID string) ([]domain.WalletMember, error) {
	query := `
		SELECT wallet_id, user_id, role, status, joined_at
		FROM wallet_members
		WHERE wallet_id = $1
		ORDER BY joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	var members []domain.WalletMember
	for rows.Next() {
		var m domain.WalletMember
		if err := rows.Scan(&m.WalletID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

func (r *PgxWalletRepository) UpdateMember(ctx context.Context, membership domain.WalletMember) error {
	query := `
		UPDATE wallet_members
		SET role = $3, status = $4
		WHERE wallet_id = $1 AND user_id = $2;
	`
	result, err := r.Pool.Exec(ctx, query,
		membership.WalletID, membership.UserID, membership.Role, membership.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update member %s in wallet %s: %w", membership.UserID, membership.WalletID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: membership of %s in wallet %s", apperrors.ErrNotFound, membership.UserID, membership.WalletID)
	}
	return nil
}
