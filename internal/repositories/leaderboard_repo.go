package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/worldbinder/backend/internal/models"
)

// ErrInsufficientPoints means the conditional debit matched no row: the user
// either does not exist in the ledger or cannot cover the bet.
var ErrInsufficientPoints = errors.New("insufficient points")

type LeaderboardRepo struct {
	pool *pgxpool.Pool
}

func NewLeaderboardRepo(pool *pgxpool.Pool) *LeaderboardRepo {
	return &LeaderboardRepo{pool: pool}
}

// DebitPoints runs the single compare-and-swap that guards the whole betting
// flow. The balance check and the decrement are one statement so two
// concurrent bets can never both succeed against one bet's worth of balance,
// regardless of how many API replicas run.
func (r *LeaderboardRepo) DebitPoints(ctx context.Context, userID, bet int64) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	e.UserID = userID
	err := r.pool.QueryRow(ctx, `
		UPDATE leaderboard
		SET points = points - $1
		WHERE user_id = $2 AND points >= $1
		RETURNING points, wins, losses
	`, bet, userID).Scan(&e.Points, &e.Wins, &e.Losses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInsufficientPoints
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreditPoints returns points without touching the win/loss record; used to
// refund a debited bet when battle registration fails.
func (r *LeaderboardRepo) CreditPoints(ctx context.Context, userID, amount int64) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	e.UserID = userID
	err := r.pool.QueryRow(ctx, `
		UPDATE leaderboard
		SET points = points + $1
		WHERE user_id = $2
		RETURNING points, wins, losses
	`, amount, userID).Scan(&e.Points, &e.Wins, &e.Losses)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreditWin pays out a resolved battle and bumps the win counter.
func (r *LeaderboardRepo) CreditWin(ctx context.Context, userID, payout int64) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	e.UserID = userID
	err := r.pool.QueryRow(ctx, `
		UPDATE leaderboard
		SET points = points + $1, wins = wins + 1
		WHERE user_id = $2
		RETURNING points, wins, losses
	`, payout, userID).Scan(&e.Points, &e.Wins, &e.Losses)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RecordLoss only increments losses; the bet was forfeited at debit time.
func (r *LeaderboardRepo) RecordLoss(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	var e models.LeaderboardEntry
	e.UserID = userID
	err := r.pool.QueryRow(ctx, `
		UPDATE leaderboard
		SET losses = losses + 1
		WHERE user_id = $1
		RETURNING points, wins, losses
	`, userID).Scan(&e.Points, &e.Wins, &e.Losses)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns ledger rows joined with user identity. Ordering and the
// 100-entry cap are enforced in the service layer, not here.
func (r *LeaderboardRepo) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.user_id, l.points, l.wins, l.losses, u.username, u.wallet_address
		FROM leaderboard l
		JOIN users u ON u.id = l.user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points, &e.Wins, &e.Losses, &e.Username, &e.WalletAddress); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
