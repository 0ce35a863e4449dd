package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/worldbinder/backend/internal/battle"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/repositories"
	"go.uber.org/zap"
)

var (
	ErrInvalidBet         = errors.New("invalid bet")
	ErrInsufficientPoints = repositories.ErrInsufficientPoints
	ErrBattleNotFound     = battle.ErrBattleNotFound
)

// Ledger is the slice of the leaderboard repo the battle flow needs.
type Ledger interface {
	DebitPoints(ctx context.Context, userID, bet int64) (*models.LeaderboardEntry, error)
	CreditPoints(ctx context.Context, userID, amount int64) (*models.LeaderboardEntry, error)
	CreditWin(ctx context.Context, userID, payout int64) (*models.LeaderboardEntry, error)
	RecordLoss(ctx context.Context, userID int64) (*models.LeaderboardEntry, error)
}

// BattleStore is the shared battle registry.
type BattleStore interface {
	Put(ctx context.Context, b *models.Battle) error
	Get(ctx context.Context, id string) (*models.Battle, error)
	Update(ctx context.Context, b *models.Battle) error
	TryAcquireResolve(ctx context.Context, id string) (bool, error)
	ReleaseResolve(ctx context.Context, id string) error
	SaveOutcome(ctx context.Context, id string, result *models.BattleResult) error
	Outcome(ctx context.Context, id string) (*models.BattleResult, error)
	Due(ctx context.Context, now time.Time, limit int64) ([]string, error)
	Dequeue(ctx context.Context, id string) error
}

type BattleService struct {
	store  BattleStore
	ledger Ledger
	cfg    *config.Config
	log    *zap.Logger
}

func NewBattleService(store BattleStore, ledger Ledger, cfg *config.Config, log *zap.Logger) *BattleService {
	return &BattleService{store: store, ledger: ledger, cfg: cfg, log: log}
}

// StartBattle debits the bet and registers a pending battle. The debit is the
// one atomic guard: once it succeeds the battle is created and scheduled, and
// the HTTP caller gets the id without waiting for resolution.
func (s *BattleService) StartBattle(ctx context.Context, userID int64, wallet, mintAddress string, bet int64) (*models.Battle, error) {
	if bet <= 0 || bet > s.cfg.MaxBet {
		return nil, ErrInvalidBet
	}

	if _, err := s.ledger.DebitPoints(ctx, userID, bet); err != nil {
		return nil, err
	}

	waitSeconds := s.cfg.BattleMinWait
	if spread := s.cfg.BattleMaxWait - s.cfg.BattleMinWait; spread > 0 {
		waitSeconds += rand.IntN(spread + 1)
	}

	now := time.Now()
	resolveAt := now.Add(time.Duration(waitSeconds) * time.Second)

	b := &models.Battle{
		ID:          uuid.NewString(),
		UserID:      userID,
		Wallet:      wallet,
		MintAddress: mintAddress,
		Bet:         bet,
		Status:      models.BattleStatusPending,
		WaitSeconds: waitSeconds,
		ResolveAt:   resolveAt,
		CreatedAt:   now,
	}
	b.Seed = battle.DeriveSeed(s.cfg.BattleSecret, b.ID, userID, mintAddress, resolveAt.Unix())

	if err := s.store.Put(ctx, b); err != nil {
		// The debit already landed; give the bet back rather than strand
		// it. A refund is not a win, so only points move.
		if _, refundErr := s.ledger.CreditPoints(ctx, userID, bet); refundErr != nil {
			s.log.Error("failed to refund bet after store failure",
				zap.Int64("user_id", userID), zap.Int64("bet", bet), zap.Error(refundErr))
		}
		return nil, fmt.Errorf("failed to register battle: %w", err)
	}

	s.log.Info("battle started",
		zap.String("battle_id", b.ID),
		zap.Int64("user_id", userID),
		zap.Int64("bet", bet),
		zap.Int("wait_seconds", waitSeconds),
	)
	return b, nil
}

func (s *BattleService) GetBattle(ctx context.Context, battleID string) (*models.Battle, error) {
	return s.store.Get(ctx, battleID)
}

// Resolve settles one battle. Safe to call any number of times: a missing or
// already-resolved battle is a no-op, and the registry lock guarantees the
// ledger is touched exactly once per battle.
func (s *BattleService) Resolve(ctx context.Context, battleID string) error {
	b, err := s.store.Get(ctx, battleID)
	if errors.Is(err, battle.ErrBattleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if b.Status != models.BattleStatusPending {
		return nil
	}

	// A deadline in the past resolves immediately; that is also the
	// force-resolve hook used in tests.
	if wait := time.Until(b.ResolveAt); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		// Re-check after waiting in case another resolver got here first.
		b, err = s.store.Get(ctx, battleID)
		if errors.Is(err, battle.ErrBattleNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if b.Status != models.BattleStatusPending {
			return nil
		}
	}

	acquired, err := s.store.TryAcquireResolve(ctx, battleID)
	if err != nil {
		return err
	}
	if !acquired {
		// The ledger was already touched for this battle. If the record
		// write died afterwards the outcome is waiting under the lock;
		// finish the transition from there instead of settling again.
		result, err := s.store.Outcome(ctx, battleID)
		if err != nil {
			return err
		}
		if result == nil {
			// Another resolver holds the lock mid-settlement.
			return nil
		}
		return s.writeResolved(ctx, b, result)
	}

	roll := battle.Roll(b.Seed)
	win := battle.IsWin(roll)

	var entry *models.LeaderboardEntry
	if win {
		entry, err = s.ledger.CreditWin(ctx, b.UserID, battle.WinPayout(b.Bet))
	} else {
		entry, err = s.ledger.RecordLoss(ctx, b.UserID)
	}
	if err != nil {
		// Give the lock back so the schedule can retry the settlement.
		if relErr := s.store.ReleaseResolve(ctx, battleID); relErr != nil {
			s.log.Error("failed to release resolve lock", zap.String("battle_id", battleID), zap.Error(relErr))
		}
		return fmt.Errorf("failed to settle battle %s: %w", battleID, err)
	}

	result := &models.BattleResult{
		Win:    win,
		Bet:    b.Bet,
		Points: entry.Points,
		Wins:   entry.Wins,
		Losses: entry.Losses,
	}

	// Pin the settled outcome to the lock before the record write, so a
	// failed write leaves the battle recoverable instead of stuck pending.
	if err := s.store.SaveOutcome(ctx, battleID, result); err != nil {
		s.log.Error("failed to save battle outcome", zap.String("battle_id", battleID), zap.Error(err))
	}

	if err := s.writeResolved(ctx, b, result); err != nil {
		return err
	}

	s.log.Info("battle resolved",
		zap.String("battle_id", b.ID),
		zap.Int64("user_id", b.UserID),
		zap.Bool("win", win),
		zap.Int("roll", roll),
	)
	return nil
}

func (s *BattleService) writeResolved(ctx context.Context, b *models.Battle, result *models.BattleResult) error {
	if !models.IsValidBattleTransition(b.Status, models.BattleStatusResolved) {
		return fmt.Errorf("invalid battle transition from %s", b.Status)
	}
	b.Status = models.BattleStatusResolved
	b.Result = result

	if err := s.store.Update(ctx, b); err != nil {
		return fmt.Errorf("failed to record battle result: %w", err)
	}
	return nil
}

// ResolveDue drains the schedule of battles whose deadline has passed. Run by
// the worker loop; each battle stays queued until its resolution succeeds.
func (s *BattleService) ResolveDue(ctx context.Context, now time.Time) {
	ids, err := s.store.Due(ctx, now, 100)
	if err != nil {
		s.log.Error("failed to read due battles", zap.Error(err))
		return
	}

	for _, id := range ids {
		if err := s.Resolve(ctx, id); err != nil {
			s.log.Error("failed to resolve battle", zap.String("battle_id", id), zap.Error(err))
			continue
		}

		// Only drop the schedule entry once the battle has actually left
		// the pending state; a battle still settling stays queued.
		b, err := s.store.Get(ctx, id)
		if err != nil && !errors.Is(err, battle.ErrBattleNotFound) {
			s.log.Error("failed to check battle before dequeue", zap.String("battle_id", id), zap.Error(err))
			continue
		}
		if b != nil && b.Status == models.BattleStatusPending {
			continue
		}
		if err := s.store.Dequeue(ctx, id); err != nil {
			s.log.Error("failed to dequeue battle", zap.String("battle_id", id), zap.Error(err))
		}
	}
}
