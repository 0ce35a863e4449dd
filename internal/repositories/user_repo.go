package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/worldbinder/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// UpsertByWallet creates the user on first login and bumps last_login on
// every subsequent one. isNew is derived from created_at == last_login so the
// caller can seed the ledger exactly once.
func (r *UserRepo) UpsertByWallet(ctx context.Context, walletAddress string) (*models.User, bool, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (wallet_address, created_at, last_login)
		VALUES ($1, now(), now())
		ON CONFLICT (wallet_address) DO UPDATE SET last_login = now()
		RETURNING id, wallet_address, username, avatar_url, created_at, last_login, updated_at
	`, walletAddress).Scan(
		&u.ID, &u.WalletAddress, &u.Username, &u.AvatarURL, &u.CreatedAt, &u.LastLogin, &u.UpdatedAt,
	)
	if err != nil {
		return nil, false, err
	}
	isNew := u.LastLogin != nil && u.CreatedAt.Equal(*u.LastLogin)
	return &u, isNew, nil
}

// UsernameTaken checks uniqueness against every other wallet.
func (r *UserRepo) UsernameTaken(ctx context.Context, username, walletAddress string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND wallet_address != $2)
	`, username, walletAddress).Scan(&exists)
	return exists, err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, walletAddress string, username, avatarURL *string) (*models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET
			username = COALESCE($1, username),
			avatar_url = COALESCE($2, avatar_url),
			updated_at = now()
		WHERE wallet_address = $3
		RETURNING id, wallet_address, username, avatar_url, created_at, last_login, updated_at
	`, username, avatarURL, walletAddress).Scan(
		&u.ID, &u.WalletAddress, &u.Username, &u.AvatarURL, &u.CreatedAt, &u.LastLogin, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SeedNewUser creates the companion token balance and ledger rows for a
// freshly registered wallet.
func (r *UserRepo) SeedNewUser(ctx context.Context, userID, startingTokens, startingPoints int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_tokens (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, startingTokens); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO leaderboard (user_id, points) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, startingPoints); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *UserRepo) GetTokenBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx, `SELECT balance FROM user_tokens WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}
