package dto

import (
	"errors"
	"regexp"
	"strings"
)

// MaxAvatarBytes bounds inline data-URI avatars so a single profile row
// cannot balloon the users table.
const MaxAvatarBytes = 2800000

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{1,19}$`)

type ChallengeRequest struct {
	PublicKey string `json:"publicKey"`
}

type VerifyRequest struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

type ProfileUpdateRequest struct {
	Username  *string `json:"username,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

func (r *ProfileUpdateRequest) Validate() error {
	if r.Username != nil {
		if !usernamePattern.MatchString(*r.Username) {
			return errors.New("username must be 2-20 characters, start with a letter and contain only letters, digits, '_' or '-'")
		}
	}
	if r.AvatarURL != nil && *r.AvatarURL != "" {
		if !strings.HasPrefix(*r.AvatarURL, "data:image/") {
			return errors.New("avatar must be a data:image/ URI")
		}
		if len(*r.AvatarURL) > MaxAvatarBytes {
			return errors.New("avatar image too large")
		}
	}
	return nil
}

type AddNFTRequest struct {
	MintAddress string `json:"mintAddress"`
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Rarity      string `json:"rarity"`
	Level       int    `json:"level,omitempty"`
}

type BattleStartRequest struct {
	MintAddress string `json:"mintAddress"`
	Bet         int64  `json:"bet"`
}

type WalletScanRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type TokenBalanceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type SkillUpgradeRequest struct {
	SkillKey    string `json:"skillKey"`
	TxSignature string `json:"txSignature"`
}
