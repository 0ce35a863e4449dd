package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/worldbinder/backend/internal/battle"
	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/repositories"
	"go.uber.org/zap"
)

// Seeds whose first 8 bytes land above/below the win threshold.
const (
	winningSeed = "0000000000001b58" // roll 7000
	losingSeed  = "0000000000000000" // roll 0
)

type fakeLedger struct {
	points     int64
	wins       int
	losses     int
	creditErr  error
	debitCalls int
	settleOps  int
}

func (l *fakeLedger) entry() *models.LeaderboardEntry {
	return &models.LeaderboardEntry{UserID: 1, Points: l.points, Wins: l.wins, Losses: l.losses}
}

func (l *fakeLedger) DebitPoints(ctx context.Context, userID, bet int64) (*models.LeaderboardEntry, error) {
	l.debitCalls++
	if l.points < bet {
		return nil, repositories.ErrInsufficientPoints
	}
	l.points -= bet
	return l.entry(), nil
}

func (l *fakeLedger) CreditPoints(ctx context.Context, userID, amount int64) (*models.LeaderboardEntry, error) {
	l.points += amount
	return l.entry(), nil
}

func (l *fakeLedger) CreditWin(ctx context.Context, userID, payout int64) (*models.LeaderboardEntry, error) {
	l.settleOps++
	if l.creditErr != nil {
		return nil, l.creditErr
	}
	l.points += payout
	l.wins++
	return l.entry(), nil
}

func (l *fakeLedger) RecordLoss(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	l.settleOps++
	l.losses++
	return l.entry(), nil
}

type fakeStore struct {
	battles  map[string]*models.Battle
	locks    map[string]bool
	outcomes map[string]*models.BattleResult
	due      map[string]time.Time
	putErr   error

	// updateErr fails the next Update call, then clears itself.
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		battles:  make(map[string]*models.Battle),
		locks:    make(map[string]bool),
		outcomes: make(map[string]*models.BattleResult),
		due:      make(map[string]time.Time),
	}
}

func (s *fakeStore) Put(ctx context.Context, b *models.Battle) error {
	if s.putErr != nil {
		return s.putErr
	}
	cp := *b
	s.battles[b.ID] = &cp
	s.due[b.ID] = b.ResolveAt
	return nil
}

func (s *fakeStore) Get(ctx context.Context, id string) (*models.Battle, error) {
	b, ok := s.battles[id]
	if !ok {
		return nil, battle.ErrBattleNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) Update(ctx context.Context, b *models.Battle) error {
	if s.updateErr != nil {
		err := s.updateErr
		s.updateErr = nil
		return err
	}
	cp := *b
	s.battles[b.ID] = &cp
	return nil
}

func (s *fakeStore) TryAcquireResolve(ctx context.Context, id string) (bool, error) {
	if s.locks[id] {
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

func (s *fakeStore) ReleaseResolve(ctx context.Context, id string) error {
	delete(s.locks, id)
	delete(s.outcomes, id)
	return nil
}

func (s *fakeStore) SaveOutcome(ctx context.Context, id string, result *models.BattleResult) error {
	cp := *result
	s.outcomes[id] = &cp
	return nil
}

func (s *fakeStore) Outcome(ctx context.Context, id string) (*models.BattleResult, error) {
	r, ok := s.outcomes[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) Due(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	var ids []string
	for id, at := range s.due {
		if !at.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *fakeStore) Dequeue(ctx context.Context, id string) error {
	delete(s.due, id)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxBet:        100000,
		BattleMinWait: 0,
		BattleMaxWait: 0,
		BattleSecret:  "test-secret",
	}
}

func newTestBattleService(store BattleStore, ledger Ledger) *BattleService {
	return NewBattleService(store, ledger, testConfig(), zap.NewNop())
}

func pendingBattle(id, seed string, bet int64) *models.Battle {
	return &models.Battle{
		ID:          id,
		UserID:      1,
		MintAddress: "mint",
		Bet:         bet,
		Status:      models.BattleStatusPending,
		ResolveAt:   time.Now().Add(-time.Second),
		Seed:        seed,
		CreatedAt:   time.Now(),
	}
}

func TestStartBattle_InvalidBet(t *testing.T) {
	ledger := &fakeLedger{points: 500}
	svc := newTestBattleService(newFakeStore(), ledger)

	for _, bet := range []int64{0, -10, 100001} {
		if _, err := svc.StartBattle(context.Background(), 1, "wallet", "mint", bet); !errors.Is(err, ErrInvalidBet) {
			t.Errorf("bet %d: expected ErrInvalidBet, got %v", bet, err)
		}
	}
	if ledger.debitCalls != 0 {
		t.Error("invalid bets must not touch the ledger")
	}
}

func TestStartBattle_InsufficientPoints(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	if _, err := svc.StartBattle(context.Background(), 1, "wallet", "mint", 400); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if len(store.battles) != 0 {
		t.Error("no battle may be created on a failed debit")
	}
	if ledger.points != 100 {
		t.Errorf("points = %d, want untouched 100", ledger.points)
	}
}

func TestStartBattle_DebitsAndSchedules(t *testing.T) {
	ledger := &fakeLedger{points: 500}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b, err := svc.StartBattle(context.Background(), 1, "wallet", "mint", 400)
	if err != nil {
		t.Fatal(err)
	}
	if ledger.points != 100 {
		t.Errorf("points = %d, want 100 after debit", ledger.points)
	}
	if b.Status != models.BattleStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if b.Seed == "" {
		t.Error("expected a derived seed")
	}
	if _, ok := store.battles[b.ID]; !ok {
		t.Error("battle not stored")
	}
	if _, ok := store.due[b.ID]; !ok {
		t.Error("battle not scheduled")
	}
}

func TestStartBattle_WaitWithinBounds(t *testing.T) {
	cfg := testConfig()
	cfg.BattleMinWait = 50
	cfg.BattleMaxWait = 70
	svc := NewBattleService(newFakeStore(), &fakeLedger{points: 1 << 40}, cfg, zap.NewNop())

	for i := 0; i < 50; i++ {
		b, err := svc.StartBattle(context.Background(), 1, "wallet", "mint", 10)
		if err != nil {
			t.Fatal(err)
		}
		if b.WaitSeconds < 50 || b.WaitSeconds > 70 {
			t.Fatalf("wait %d outside [50,70]", b.WaitSeconds)
		}
	}
}

func TestStartBattle_RefundsOnStoreFailure(t *testing.T) {
	ledger := &fakeLedger{points: 500}
	store := newFakeStore()
	store.putErr = errors.New("redis down")
	svc := newTestBattleService(store, ledger)

	if _, err := svc.StartBattle(context.Background(), 1, "wallet", "mint", 400); err == nil {
		t.Fatal("expected error when the store rejects the battle")
	}
	if ledger.points != 500 {
		t.Errorf("points = %d, want 500 after refund", ledger.points)
	}
	if ledger.wins != 0 {
		t.Errorf("wins = %d, a refund must not count as a win", ledger.wins)
	}
	if ledger.settleOps != 0 {
		t.Errorf("settleOps = %d, a refund is not a settlement", ledger.settleOps)
	}
}

func TestResolve_Win(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b := pendingBattle("b1", winningSeed, 400)
	store.battles[b.ID] = b

	if err := svc.Resolve(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}

	got := store.battles[b.ID]
	if got.Status != models.BattleStatusResolved {
		t.Fatalf("status = %s, want resolved", got.Status)
	}
	if got.Result == nil || !got.Result.Win {
		t.Fatal("expected a winning result")
	}
	// 100 + 2*400 + 100 payout
	if ledger.points != 1000 {
		t.Errorf("points = %d, want 1000", ledger.points)
	}
	if ledger.wins != 1 || ledger.losses != 0 {
		t.Errorf("wins/losses = %d/%d, want 1/0", ledger.wins, ledger.losses)
	}
	if got.Result.Points != 1000 {
		t.Errorf("result points = %d, want 1000", got.Result.Points)
	}
}

func TestResolve_Loss(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b := pendingBattle("b1", losingSeed, 400)
	store.battles[b.ID] = b

	if err := svc.Resolve(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}

	got := store.battles[b.ID]
	if got.Status != models.BattleStatusResolved {
		t.Fatalf("status = %s, want resolved", got.Status)
	}
	if got.Result == nil || got.Result.Win {
		t.Fatal("expected a losing result")
	}
	if ledger.points != 100 {
		t.Errorf("points = %d, loss must not change balance", ledger.points)
	}
	if ledger.losses != 1 || ledger.wins != 0 {
		t.Errorf("wins/losses = %d/%d, want 0/1", ledger.wins, ledger.losses)
	}
}

func TestResolve_ExactlyOnce(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b := pendingBattle("b1", winningSeed, 400)
	store.battles[b.ID] = b

	for i := 0; i < 5; i++ {
		if err := svc.Resolve(context.Background(), b.ID); err != nil {
			t.Fatal(err)
		}
	}
	if ledger.settleOps != 1 {
		t.Errorf("ledger settled %d times, want exactly once", ledger.settleOps)
	}
}

func TestResolve_UnknownBattleIsNoop(t *testing.T) {
	svc := newTestBattleService(newFakeStore(), &fakeLedger{})
	if err := svc.Resolve(context.Background(), "ghost"); err != nil {
		t.Fatalf("unknown battle must be a no-op, got %v", err)
	}
}

func TestResolve_LedgerFailureReleasesLock(t *testing.T) {
	ledger := &fakeLedger{points: 100, creditErr: errors.New("db down")}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b := pendingBattle("b1", winningSeed, 400)
	store.battles[b.ID] = b

	if err := svc.Resolve(context.Background(), b.ID); err == nil {
		t.Fatal("expected settlement error")
	}
	if store.battles[b.ID].Status != models.BattleStatusPending {
		t.Error("battle must stay pending after failed settlement")
	}
	if store.locks[b.ID] {
		t.Error("resolve lock must be released for retry")
	}

	// Retry succeeds once the ledger recovers.
	ledger.creditErr = nil
	if err := svc.Resolve(context.Background(), b.ID); err != nil {
		t.Fatal(err)
	}
	if store.battles[b.ID].Status != models.BattleStatusResolved {
		t.Error("retry must resolve the battle")
	}
}

func TestResolve_RecordWriteFailureRecovers(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	b := pendingBattle("b1", winningSeed, 400)
	store.battles[b.ID] = b
	store.due[b.ID] = b.ResolveAt
	store.updateErr = errors.New("redis down")

	// First pass: the ledger settles but the record write dies. The battle
	// must stay both pending and queued.
	svc.ResolveDue(context.Background(), time.Now())
	if store.battles[b.ID].Status != models.BattleStatusPending {
		t.Fatalf("status = %s, want still pending after failed write", store.battles[b.ID].Status)
	}
	if _, queued := store.due[b.ID]; !queued {
		t.Fatal("battle must stay queued until the record write lands")
	}

	// Second pass finishes the write from the saved outcome without
	// settling the ledger again.
	svc.ResolveDue(context.Background(), time.Now())

	got := store.battles[b.ID]
	if got.Status != models.BattleStatusResolved {
		t.Fatalf("status = %s, want resolved after retry", got.Status)
	}
	if got.Result == nil || !got.Result.Win {
		t.Fatal("expected the settled winning result on the record")
	}
	if ledger.settleOps != 1 {
		t.Errorf("ledger settled %d times, want exactly once", ledger.settleOps)
	}
	if _, queued := store.due[b.ID]; queued {
		t.Error("resolved battle must be dequeued")
	}
}

func TestResolveDue(t *testing.T) {
	ledger := &fakeLedger{points: 100}
	store := newFakeStore()
	svc := newTestBattleService(store, ledger)

	due := pendingBattle("due", losingSeed, 50)
	store.battles[due.ID] = due
	store.due[due.ID] = due.ResolveAt

	future := pendingBattle("future", losingSeed, 50)
	future.ResolveAt = time.Now().Add(time.Hour)
	store.battles[future.ID] = future
	store.due[future.ID] = future.ResolveAt

	svc.ResolveDue(context.Background(), time.Now())

	if store.battles["due"].Status != models.BattleStatusResolved {
		t.Error("due battle not resolved")
	}
	if _, queued := store.due["due"]; queued {
		t.Error("resolved battle must be dequeued")
	}
	if store.battles["future"].Status != models.BattleStatusPending {
		t.Error("future battle must stay pending")
	}
	if _, queued := store.due["future"]; !queued {
		t.Error("future battle must stay queued")
	}
}
