package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/worldbinder/backend/internal/models"
)

type NFTRepo struct {
	pool *pgxpool.Pool
}

func NewNFTRepo(pool *pgxpool.Pool) *NFTRepo {
	return &NFTRepo{pool: pool}
}

func (r *NFTRepo) Upsert(ctx context.Context, n *models.UserNFT) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_nfts (user_id, mint_address, name, image_url, rarity, level)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, mint_address) DO UPDATE SET
			name = EXCLUDED.name,
			image_url = EXCLUDED.image_url,
			rarity = EXCLUDED.rarity,
			level = EXCLUDED.level
		RETURNING id, created_at
	`, n.UserID, n.MintAddress, n.Name, n.ImageURL, n.Rarity, n.Level).Scan(&n.ID, &n.CreatedAt)
}

func (r *NFTRepo) ListByUser(ctx context.Context, userID int64) ([]models.UserNFT, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, mint_address, name, image_url, rarity, level, created_at
		FROM user_nfts WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nfts []models.UserNFT
	for rows.Next() {
		var n models.UserNFT
		if err := rows.Scan(&n.ID, &n.UserID, &n.MintAddress, &n.Name, &n.ImageURL, &n.Rarity, &n.Level, &n.CreatedAt); err != nil {
			return nil, err
		}
		nfts = append(nfts, n)
	}
	return nfts, rows.Err()
}
