package models

// Skill keys accepted by the upgrade endpoint. Mirrors the seeded catalog.
const (
	SkillBladeStrike = "bladeStrike"
	SkillEnergyBurst = "energyBurst"
	SkillMeteorRain  = "meteorRain"
	SkillDefense     = "defense"
	SkillHealing     = "healing"
)

func IsValidSkillKey(key string) bool {
	switch key {
	case SkillBladeStrike, SkillEnergyBurst, SkillMeteorRain, SkillDefense, SkillHealing:
		return true
	}
	return false
}

type Skill struct {
	ID            int64   `json:"id"`
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	BaseDamage    int     `json:"base_damage"`
	BaseCooldown  float64 `json:"base_cooldown"`
	MaxLevel      int     `json:"max_level"`
	RequiredLevel int     `json:"required_level"`
}
