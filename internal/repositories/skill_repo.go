package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/worldbinder/backend/internal/models"
)

type SkillRepo struct {
	pool *pgxpool.Pool
}

func NewSkillRepo(pool *pgxpool.Pool) *SkillRepo {
	return &SkillRepo{pool: pool}
}

func (r *SkillRepo) List(ctx context.Context) ([]models.Skill, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, key, name, description, base_damage, base_cooldown, max_level, required_level
		FROM skills
		ORDER BY required_level, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []models.Skill
	for rows.Next() {
		var s models.Skill
		if err := rows.Scan(&s.ID, &s.Key, &s.Name, &s.Description, &s.BaseDamage, &s.BaseCooldown, &s.MaxLevel, &s.RequiredLevel); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// IncrementLevel bumps the user's level for one skill, creating the row at
// level 2 on first upgrade (level 1 is the implicit starting level).
func (r *SkillRepo) IncrementLevel(ctx context.Context, userID int64, skillKey string) (int, error) {
	var level int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_skill_levels (user_id, skill_key, level)
		VALUES ($1, $2, 2)
		ON CONFLICT (user_id, skill_key) DO UPDATE SET level = user_skill_levels.level + 1
		RETURNING level
	`, userID, skillKey).Scan(&level)
	return level, err
}

func (r *SkillRepo) GetLevels(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT skill_key, level FROM user_skill_levels WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make(map[string]int)
	for rows.Next() {
		var key string
		var level int
		if err := rows.Scan(&key, &level); err != nil {
			return nil, err
		}
		levels[key] = level
	}
	return levels, rows.Err()
}
