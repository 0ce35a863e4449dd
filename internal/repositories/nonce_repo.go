package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNonceConsumed = errors.New("nonce unknown, expired or already used")

// NonceRepo persists challenge nonces so a signed message can only be
// redeemed once within its TTL.
type NonceRepo struct {
	pool *pgxpool.Pool
}

func NewNonceRepo(pool *pgxpool.Pool) *NonceRepo {
	return &NonceRepo{pool: pool}
}

func (r *NonceRepo) Create(ctx context.Context, nonce, walletAddress string, ttl time.Duration) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO challenge_nonces (nonce, wallet_address, expires_at)
		VALUES ($1, $2, now() + make_interval(secs => $3))
	`, nonce, walletAddress, ttl.Seconds())
	return err
}

// Consume marks the nonce used. The conditional update is the single replay
// guard: a second redemption, a foreign wallet, or an expired nonce all hit
// zero rows.
func (r *NonceRepo) Consume(ctx context.Context, nonce, walletAddress string) error {
	var id int64
	err := r.pool.QueryRow(ctx, `
		UPDATE challenge_nonces
		SET used = true
		WHERE nonce = $1 AND wallet_address = $2 AND used = false AND expires_at > now()
		RETURNING id
	`, nonce, walletAddress).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNonceConsumed
	}
	return err
}

// PurgeExpired drops stale rows; called periodically by the worker.
func (r *NonceRepo) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM challenge_nonces WHERE expires_at < now() - interval '1 hour'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
