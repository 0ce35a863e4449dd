package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

var (
	ErrInvalidSkillKey = errors.New("invalid skill key")
	// ErrTxNotIndexed: the signature is unknown to the RPC node, which for a
	// just-submitted burn usually means "try again in a few seconds".
	ErrTxNotIndexed = errors.New("transaction not found or not confirmed yet")
	ErrTxFailed     = errors.New("transaction failed on chain")
	// ErrBurnAuthorityMismatch: the burn was signed by a wallet other than
	// the authenticated one.
	ErrBurnAuthorityMismatch = errors.New("burn authority does not match wallet")
	ErrBurnMismatch          = errors.New("no matching burn instruction")
)

// TransactionReader fetches a confirmed transaction by signature.
type TransactionReader interface {
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
}

// SkillLeveler is the slice of the skill repo the upgrade flow needs.
type SkillLeveler interface {
	IncrementLevel(ctx context.Context, userID int64, skillKey string) (int, error)
}

type SkillService struct {
	skills SkillLeveler
	rpc    TransactionReader
	cfg    *config.Config
	log    *zap.Logger
}

func NewSkillService(skills SkillLeveler, rpc TransactionReader, cfg *config.Config, log *zap.Logger) *SkillService {
	return &SkillService{skills: skills, rpc: rpc, cfg: cfg, log: log}
}

// Upgrade verifies an on-chain token burn and, if it covers the per-level
// cost, increments the user's skill level. The burn transaction is the
// payment; the server never trusts the client's claim of having paid.
func (s *SkillService) Upgrade(ctx context.Context, userID int64, walletAddress, skillKey, txSignature string) (int, error) {
	if !models.IsValidSkillKey(skillKey) {
		return 0, ErrInvalidSkillKey
	}
	if s.cfg.TokenMint == "" {
		return 0, fmt.Errorf("token mint not configured")
	}

	tx, err := s.rpc.GetTransaction(ctx, txSignature)
	if errors.Is(err, solana.ErrTxNotFound) {
		return 0, ErrTxNotIndexed
	}
	if err != nil {
		return 0, err
	}

	minRaw := burnCostRaw(s.cfg.BurnCostPerLevel, s.cfg.TokenDecimals)
	if err := VerifyBurn(tx, s.cfg.TokenMint, walletAddress, minRaw); err != nil {
		s.log.Debug("burn verification failed",
			zap.String("wallet", walletAddress),
			zap.String("signature", txSignature),
			zap.Error(err),
		)
		return 0, err
	}

	level, err := s.skills.IncrementLevel(ctx, userID, skillKey)
	if err != nil {
		return 0, fmt.Errorf("failed to record upgrade: %w", err)
	}

	s.log.Info("skill upgraded",
		zap.Int64("user_id", userID),
		zap.String("skill", skillKey),
		zap.Int("level", level),
	)
	return level, nil
}

// VerifyBurn checks that the transaction succeeded and contains a burn of at
// least minRaw base units of the given mint, signed by the given wallet.
func VerifyBurn(tx *solana.Transaction, mint, walletAddress string, minRaw uint64) error {
	if tx.Meta.Failed() {
		return ErrTxFailed
	}

	authorityMismatch := false
	for _, inst := range tx.Transaction.Message.Instructions {
		parsed, ok := inst.ParsedInstruction()
		if !ok {
			continue
		}
		if parsed.Type != "burn" && parsed.Type != "burnChecked" {
			continue
		}
		if parsed.Info.Mint != mint {
			continue
		}
		if parsed.Info.Authority != walletAddress {
			authorityMismatch = true
			continue
		}

		amount, err := strconv.ParseUint(parsed.Info.Amount, 10, 64)
		if err != nil {
			continue
		}
		if amount >= minRaw {
			return nil
		}
	}

	if authorityMismatch {
		return ErrBurnAuthorityMismatch
	}
	return ErrBurnMismatch
}

func burnCostRaw(costPerLevel int64, decimals int) uint64 {
	if costPerLevel <= 0 {
		return 0
	}
	return uint64(costPerLevel) * uint64(math.Pow10(decimals))
}
