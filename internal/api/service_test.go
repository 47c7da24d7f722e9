package api

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ducduc1118-design/recash/internal/memory"
	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var types []string
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func testRewards() models.RewardsConfig {
	return models.RewardsConfig{
		CheckinTitle:  "Daily Check-in",
		CheckinReward: decimal.NewFromInt(10),
		Location:      time.UTC,
		MinWithdrawal: decimal.NewFromInt(10),
		SignUpBonus:   decimal.NewFromInt(5),
		ReferralBonus: decimal.NewFromInt(10),
	}
}

func setupTestService(t *testing.T) (*RewardsService, *memory.Store, *recordingPublisher, *testClock) {
	t.Helper()
	ledger := memory.NewStore()
	publisher := &recordingPublisher{}
	clock := &testClock{now: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)}
	svc := NewRewardsService(ledger, testRewards(), publisher, WithClock(clock.Now))
	return svc, ledger, publisher, clock
}

func createTestUser(t *testing.T, ledger store.LedgerStore, name string) *models.User {
	t.Helper()
	user, err := ledger.CreateUser(context.Background(), store.CreateUserParams{
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func TestCheckinToday_Idempotent(t *testing.T) {
	svc, ledger, publisher, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "alice")

	first, err := svc.CheckinToday(ctx, user.Id)
	if err != nil {
		t.Fatalf("CheckinToday failed: %v", err)
	}
	if !first.CheckedIn || first.Streak != 1 {
		t.Errorf("Expected checked in with streak 1, got %+v", first)
	}

	second, err := svc.CheckinToday(ctx, user.Id)
	if err != nil {
		t.Fatalf("Second CheckinToday failed: %v", err)
	}
	if second != first {
		t.Errorf("Expected repeated check-in to return %+v, got %+v", first, second)
	}

	entries, _ := ledger.FindEntries(ctx, store.EntryFilter{UserId: user.Id})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(entries))
	}
	if !entries[0].Amount.Equal(decimal.NewFromInt(10)) || entries[0].Type != models.EntryTypeBonus {
		t.Errorf("Unexpected check-in entry: %+v", entries[0])
	}

	if types := publisher.types(); len(types) != 1 || types[0] != models.EventCheckinCompleted {
		t.Errorf("Expected one checkin.completed event, got %v", types)
	}
}

func TestCheckinToday_ConsecutiveDays(t *testing.T) {
	svc, ledger, _, clock := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "bob")

	start := time.Date(2026, 10, 1, 23, 59, 0, 0, time.UTC)
	steps := []struct {
		at     time.Time
		streak int
	}{
		{start, 1},
		{start.Add(2 * time.Minute), 2}, // 00:01 the next day
		{start.AddDate(0, 0, 2), 3},
		{start.AddDate(0, 0, 4), 1}, // missed a day
	}

	for _, step := range steps {
		clock.Set(step.at)
		status, err := svc.CheckinToday(ctx, user.Id)
		if err != nil {
			t.Fatalf("CheckinToday at %s failed: %v", step.at, err)
		}
		if status.Streak != step.streak {
			t.Errorf("At %s: expected streak %d, got %d", step.at, step.streak, status.Streak)
		}
	}

	// next morning, before checking in, the run is still alive
	clock.Set(start.AddDate(0, 0, 5))
	status, err := svc.GetCheckinStatus(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetCheckinStatus failed: %v", err)
	}
	if status.CheckedIn || status.Streak != 1 {
		t.Errorf("Expected streak 1 not checked in, got %+v", status)
	}
}

func TestCheckinToday_Concurrent(t *testing.T) {
	svc, ledger, _, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "carol")

	const callers = 20
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := svc.CheckinToday(ctx, user.Id)
			if err != nil {
				errs <- err
				return
			}
			if !status.CheckedIn || status.Streak != 1 {
				errs <- errors.New("unexpected status after concurrent check-in")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	entries, _ := ledger.FindEntries(ctx, store.EntryFilter{UserId: user.Id})
	if len(entries) != 1 {
		t.Errorf("Expected exactly 1 check-in entry, got %d", len(entries))
	}
}

func TestGetWalletSummary(t *testing.T) {
	svc, ledger, _, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "dave")

	if _, err := svc.RecordCashback(ctx, user.Id, "Amazon", decimal.RequireFromString("12.50")); err != nil {
		t.Fatalf("RecordCashback failed: %v", err)
	}
	if _, err := svc.CreditReferralBonus(ctx, user.Id, "Erin"); err != nil {
		t.Fatalf("CreditReferralBonus failed: %v", err)
	}

	view, err := svc.GetWalletSummary(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWalletSummary failed: %v", err)
	}
	expected := models.WalletView{Balance: "$22.50", Pending: "$12.50", Lifetime: "$22.50"}
	if view != expected {
		t.Errorf("Expected %+v, got %+v", expected, view)
	}

	ledgerRecords, err := svc.GetLedger(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetLedger failed: %v", err)
	}
	if len(ledgerRecords) != 2 {
		t.Fatalf("Expected 2 ledger records, got %d", len(ledgerRecords))
	}
	for _, r := range ledgerRecords {
		if r.Date != "Oct 18" {
			t.Errorf("Expected date Oct 18, got %s", r.Date)
		}
	}

	if _, err := svc.GetWalletSummary(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty user, got %v", err)
	}
}

func TestSettleEntry(t *testing.T) {
	svc, ledger, publisher, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "frank")

	entry, err := svc.RecordCashback(ctx, user.Id, "Shopee", decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("RecordCashback failed: %v", err)
	}
	if entry.Title != "Cashback from Shopee" || entry.Status != models.EntryStatusPending {
		t.Errorf("Unexpected cashback entry: %+v", entry)
	}

	if err := svc.SettleEntry(ctx, user.Id, entry.Id, models.EntryStatusCompleted); err != nil {
		t.Fatalf("SettleEntry failed: %v", err)
	}
	view, _ := svc.GetWalletSummary(ctx, user.Id)
	if view.Pending != "$0.00" || view.Balance != "$20.00" {
		t.Errorf("Unexpected wallet after settle: %+v", view)
	}

	if err := svc.SettleEntry(ctx, user.Id, entry.Id, models.EntryStatusPending); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput settling back to pending, got %v", err)
	}
	if err := svc.SettleEntry(ctx, user.Id, "missing", models.EntryStatusFailed); !errors.Is(err, store.ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}

	types := publisher.types()
	if len(types) != 2 || types[1] != models.EventEntrySettled {
		t.Errorf("Expected cashback.recorded then entry.settled, got %v", types)
	}
}

func TestRecordCashback_WholeCentsOnly(t *testing.T) {
	svc, ledger, publisher, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "olivia")

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordCashback(ctx, user.Id, "Lazada", decimal.RequireFromString("0.005")); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for half a cent, got %v", err)
		}
	}

	if _, err := svc.RecordCashback(ctx, user.Id, "Lazada", decimal.RequireFromString("0.01")); err != nil {
		t.Fatalf("RecordCashback failed: %v", err)
	}

	entries, _ := ledger.FindEntries(ctx, store.EntryFilter{UserId: user.Id})
	if len(entries) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(entries))
	}
	view, _ := svc.GetWalletSummary(ctx, user.Id)
	if view.Lifetime != "$0.01" || view.Pending != "$0.01" {
		t.Errorf("Expected lifetime and pending $0.01, got %+v", view)
	}
	if types := publisher.types(); len(types) != 1 {
		t.Errorf("Expected 1 event, got %v", types)
	}
}

func TestRequestWithdrawal(t *testing.T) {
	svc, ledger, publisher, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "grace")

	if _, err := svc.CreditReferralBonus(ctx, user.Id, "Heidi"); err != nil {
		t.Fatalf("CreditReferralBonus failed: %v", err)
	}
	if _, err := svc.CheckinToday(ctx, user.Id); err != nil {
		t.Fatalf("CheckinToday failed: %v", err)
	}

	result, err := svc.RequestWithdrawal(ctx, user.Id, decimal.NewFromInt(15), models.WithdrawalMethodBank)
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	if !result.Success || result.NewBalance != "$5.00" || result.Amount != "$15.00" {
		t.Errorf("Unexpected result: %+v", result)
	}

	withdrawals, err := svc.GetWithdrawals(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWithdrawals failed: %v", err)
	}
	if len(withdrawals) != 1 || withdrawals[0].Details != "Bank Transfer" || withdrawals[0].Status != "Pending" {
		t.Errorf("Unexpected withdrawals: %+v", withdrawals)
	}

	settled, err := svc.UpdateWithdrawalStatus(ctx, result.WithdrawalId, models.WithdrawalStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}
	if settled.Status != models.WithdrawalStatusCompleted {
		t.Errorf("Expected Completed, got %s", settled.Status)
	}

	types := publisher.types()
	if types[len(types)-1] != models.EventWithdrawalSettled {
		t.Errorf("Expected last event withdrawal.settled, got %v", types)
	}
}

func TestRequestWithdrawal_Rejected(t *testing.T) {
	svc, ledger, _, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "ivan")

	if _, err := svc.CreditReferralBonus(ctx, user.Id, "Judy"); err != nil {
		t.Fatalf("CreditReferralBonus failed: %v", err)
	}

	tests := []struct {
		name    string
		amount  decimal.Decimal
		method  models.WithdrawalMethod
		wantErr error
	}{
		{"below minimum", decimal.RequireFromString("9.99"), models.WithdrawalMethodBank, ErrInvalidInput},
		{"negative", decimal.NewFromInt(-20), models.WithdrawalMethodBank, ErrInvalidInput},
		{"unknown method", decimal.NewFromInt(10), models.WithdrawalMethod("paypal"), ErrInvalidInput},
		{"fraction of a cent", decimal.RequireFromString("10.005"), models.WithdrawalMethodBank, ErrInvalidInput},
		{"over balance", decimal.RequireFromString("10.01"), models.WithdrawalMethodEWallet, ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.RequestWithdrawal(ctx, user.Id, tt.amount, tt.method)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if result == nil || result.Success || result.Error == "" {
				t.Errorf("Expected failed result with message, got %+v", result)
			}
		})
	}

	withdrawals, _ := svc.GetWithdrawals(ctx, user.Id)
	if len(withdrawals) != 0 {
		t.Errorf("Expected no withdrawals, got %d", len(withdrawals))
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, _, _ := setupTestService(t)
	ctx := context.Background()

	profile, err := svc.RegisterUser(ctx, RegisterParams{Name: "Kim", Email: "kim@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if profile.ReferralCode == "" {
		t.Error("Expected a referral code")
	}

	view, _ := svc.GetWalletSummary(ctx, profile.Id)
	if view.Balance != "$5.00" {
		t.Errorf("Expected sign-up bonus balance $5.00, got %s", view.Balance)
	}

	if _, err := svc.RegisterUser(ctx, RegisterParams{Name: "Kim", Email: "KIM@example.com", Password: "secret123"}); !errors.Is(err, store.ErrDuplicateUser) {
		t.Errorf("Expected ErrDuplicateUser, got %v", err)
	}
	if _, err := svc.RegisterUser(ctx, RegisterParams{Name: "Lee", Email: "not-an-email", Password: "secret123"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	authed, err := svc.Authenticate(ctx, "kim@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.Id != profile.Id {
		t.Errorf("Expected user %s, got %s", profile.Id, authed.Id)
	}

	if _, err := svc.Authenticate(ctx, "kim@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestGetUserBalances(t *testing.T) {
	svc, ledger, _, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "mallory")

	if _, err := svc.CheckinToday(ctx, user.Id); err != nil {
		t.Fatalf("CheckinToday failed: %v", err)
	}

	balances, err := svc.GetUserBalances(ctx)
	if err != nil {
		t.Fatalf("GetUserBalances failed: %v", err)
	}
	if len(balances) != 1 || balances[0].Summary.Balance != "$10.00" {
		t.Errorf("Unexpected balances: %+v", balances)
	}
}

func TestCheckinToday_UnknownUser(t *testing.T) {
	svc, ledger, publisher, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CheckinToday(ctx, "no-such-user"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetCheckinStatus(ctx, "no-such-user"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound from GetCheckinStatus, got %v", err)
	}

	entries, _ := ledger.FindEntries(ctx, store.EntryFilter{UserId: "no-such-user"})
	if len(entries) != 0 {
		t.Errorf("Expected no entries for unknown user, got %d", len(entries))
	}
	if types := publisher.types(); len(types) != 0 {
		t.Errorf("Expected no events, got %v", types)
	}
}

func TestListWithdrawals(t *testing.T) {
	svc, ledger, _, clock := setupTestService(t)
	ctx := context.Background()
	alice := createTestUser(t, ledger, "alice")
	bob := createTestUser(t, ledger, "bob")

	var ids []string
	for _, user := range []*models.User{alice, bob} {
		if _, err := svc.CreditReferralBonus(ctx, user.Id, "Friend"); err != nil {
			t.Fatalf("CreditReferralBonus failed: %v", err)
		}
		result, err := svc.RequestWithdrawal(ctx, user.Id, decimal.NewFromInt(10), models.WithdrawalMethodEWallet)
		if err != nil {
			t.Fatalf("RequestWithdrawal failed: %v", err)
		}
		ids = append(ids, result.WithdrawalId)
		clock.Set(clock.Now().Add(time.Minute))
	}

	if _, err := svc.UpdateWithdrawalStatus(ctx, ids[0], models.WithdrawalStatusRejected); err != nil {
		t.Fatalf("UpdateWithdrawalStatus failed: %v", err)
	}

	pending, err := svc.ListWithdrawals(ctx, models.WithdrawalStatusPending)
	if err != nil {
		t.Fatalf("ListWithdrawals failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending withdrawal, got %d", len(pending))
	}
	if pending[0].Id != ids[1] || pending[0].UserId != bob.Id || pending[0].UserName != "bob" {
		t.Errorf("Expected bob's withdrawal %s, got %+v", ids[1], pending[0])
	}

	all, _ := svc.ListWithdrawals(ctx, "")
	if len(all) != 2 {
		t.Errorf("Expected 2 withdrawals, got %d", len(all))
	}

	if _, err := svc.ListWithdrawals(ctx, "Lost"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	svc, ledger, _, _ := setupTestService(t)
	ctx := context.Background()
	user := createTestUser(t, ledger, "peggy")
	admin, err := ledger.CreateUser(ctx, store.CreateUserParams{Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := svc.RequireAdmin(ctx, admin.Id); err != nil {
		t.Errorf("Expected admin to pass, got %v", err)
	}
	if err := svc.RequireAdmin(ctx, user.Id); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if err := svc.RequireAdmin(ctx, "no-such-user"); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	profile, _ := svc.GetProfile(ctx, admin.Id)
	if profile.Role != models.RoleAdmin {
		t.Errorf("Expected admin role on profile, got %q", profile.Role)
	}
}
