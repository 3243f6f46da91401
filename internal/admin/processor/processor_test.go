package processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"adledger-server/internal/store/memory"
	"adledger-server/internal/userlock"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const adminID = "6653616672"

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	admin  *AdminProcessor
	ledger *ledger.LedgerProcessor
	repo   *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	now := func() time.Time { return fixedNow }
	repo := memory.NewWithClock(now)
	locks := userlock.New()
	logger := observability.NewNopLogger()
	lp := ledger.New(repo, locks, nil, nil, nil, logger, ledger.Config{Now: now})
	ap := New(repo, lp, locks, nil, nil, logger, Config{AdminID: adminID, Now: now})
	return &testEnv{admin: ap, ledger: lp, repo: repo}
}

func (e *testEnv) createUser(t *testing.T, externalID string) store.User {
	t.Helper()
	user, _, err := e.ledger.GetOrCreateUser(context.Background(), ledger.GetOrCreateUserRequest{
		ExternalID:  externalID,
		DisplayName: "user-" + externalID,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) mutate(t *testing.T, id uuid.UUID, fn func(*store.User)) {
	t.Helper()
	_, err := e.repo.MutateUser(context.Background(), id, func(u *store.User) error {
		fn(u)
		return nil
	})
	require.NoError(t, err)
}

func (e *testEnv) pendingWithdrawal(t *testing.T, userID uuid.UUID, amount string) store.WithdrawalRequest {
	t.Helper()
	w, err := e.repo.CreateWithdrawal(context.Background(), store.CreateWithdrawalParams{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Method:      store.WithdrawalMethodWallet,
		Destination: "EQ-wallet",
	})
	require.NoError(t, err)
	return w
}

func TestAdminGate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")
	epa := decimal.RequireFromString("0.001")

	calls := map[string]func(caller string) error{
		"stats": func(caller string) error {
			_, err := env.admin.Stats(ctx, caller)
			return err
		},
		"list users": func(caller string) error {
			_, err := env.admin.ListUsers(ctx, caller, ListUsersRequest{})
			return err
		},
		"pending withdrawals": func(caller string) error {
			_, err := env.admin.ListPendingWithdrawals(ctx, caller)
			return err
		},
		"ban": func(caller string) error {
			_, err := env.admin.BanUser(ctx, caller, BanUserRequest{UserID: user.ID, Banned: true})
			return err
		},
		"flag": func(caller string) error {
			_, err := env.admin.FlagUser(ctx, caller, FlagUserRequest{UserID: user.ID, Flagged: true})
			return err
		},
		"approve claim": func(caller string) error {
			_, err := env.admin.ApproveClaim(ctx, caller, user.ID)
			return err
		},
		"reject claim": func(caller string) error {
			_, err := env.admin.RejectClaim(ctx, caller, RejectClaimRequest{UserID: user.ID})
			return err
		},
		"process withdrawal": func(caller string) error {
			_, err := env.admin.ProcessWithdrawal(ctx, caller, ProcessWithdrawalRequest{WithdrawalID: uuid.New(), Status: "approved"})
			return err
		},
		"update settings": func(caller string) error {
			_, err := env.admin.UpdateSettings(ctx, caller, UpdateSettingsRequest{EarningsPerAd: &epa})
			return err
		},
		"export": func(caller string) error {
			_, err := env.admin.ExportUsersCSV(ctx, caller, &bytes.Buffer{})
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call("123456789"), ErrNotAdmin)
			assert.ErrorIs(t, call(""), ErrNotAdmin)
		})
	}

	got, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Banned)
	assert.False(t, got.Flagged)

	settings, err := env.repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0.00035", settings.EarningsPerAd.String())
}

func TestBanUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")

	banned, err := env.admin.BanUser(ctx, adminID, BanUserRequest{UserID: user.ID, Banned: true})
	require.NoError(t, err)
	assert.True(t, banned.Banned)
	assert.True(t, banned.Flagged)
	require.NotNil(t, banned.FlagReason)
	assert.Equal(t, "Banned by admin", *banned.FlagReason)

	unbanned, err := env.admin.BanUser(ctx, adminID, BanUserRequest{UserID: user.ID, Banned: false, Reason: "appeal"})
	require.NoError(t, err)
	assert.False(t, unbanned.Banned)
	assert.True(t, unbanned.Flagged, "unbanning keeps the flag")
	assert.Equal(t, "Banned by admin", *unbanned.FlagReason)

	_, err = env.admin.BanUser(ctx, adminID, BanUserRequest{UserID: uuid.New(), Banned: true})
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestBanUser_BlocksAdWatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")

	_, err := env.admin.BanUser(ctx, adminID, BanUserRequest{UserID: user.ID, Banned: true, Reason: "bot traffic"})
	require.NoError(t, err)

	_, err = env.ledger.RecordAdWatch(ctx, user.ID)
	assert.ErrorIs(t, err, ledger.ErrBanned)
}

func TestFlagUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")

	flagged, err := env.admin.FlagUser(ctx, adminID, FlagUserRequest{UserID: user.ID, Flagged: true, Reason: "odd pattern"})
	require.NoError(t, err)
	assert.True(t, flagged.Flagged)
	assert.False(t, flagged.Banned)
	assert.Equal(t, "odd pattern", *flagged.FlagReason)

	cleared, err := env.admin.FlagUser(ctx, adminID, FlagUserRequest{UserID: user.ID, Flagged: false})
	require.NoError(t, err)
	assert.False(t, cleared.Flagged)
	assert.Nil(t, cleared.FlagReason)
}

func TestApproveClaim(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	claims := NewMockClaimApprover(ctrl)
	events := NewMockEventDispatcher(ctrl)
	ap := New(memory.New(), claims, userlock.New(), events, nil, observability.NewNopLogger(), Config{AdminID: adminID})

	userID := uuid.New()
	want := ledger.ClaimResult{Claimed: decimal.RequireFromString("0.0007"), User: store.User{ID: userID}}

	claims.EXPECT().ClaimEarnings(gomock.Any(), userID).Return(want, nil)
	events.EXPECT().DispatchUserModerated(gomock.Any(), want.User, ActionClaimApproved)

	got, err := ap.ApproveClaim(ctx, adminID, userID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	claims.EXPECT().ClaimEarnings(gomock.Any(), userID).Return(ledger.ClaimResult{}, ledger.ErrNothingToClaim)
	_, err = ap.ApproveClaim(ctx, adminID, userID)
	assert.ErrorIs(t, err, ledger.ErrNothingToClaim)
}

func TestApproveClaim_MovesEarnings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")
	env.mutate(t, user.ID, func(u *store.User) { u.DailyEarnings = decimal.RequireFromString("0.5") })

	result, err := env.admin.ApproveClaim(ctx, adminID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.50000", result.ClaimedString())
	assert.Equal(t, "0.5", result.User.WithdrawBalance.String())
	assert.True(t, result.User.DailyEarnings.IsZero())
}

func TestRejectClaim(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")
	env.mutate(t, user.ID, func(u *store.User) {
		u.DailyEarnings = decimal.RequireFromString("0.5")
		u.WithdrawBalance = decimal.RequireFromString("2")
	})

	result, err := env.admin.RejectClaim(ctx, adminID, RejectClaimRequest{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "0.5", result.Rejected.String())
	assert.True(t, result.User.DailyEarnings.IsZero())
	assert.Equal(t, "2", result.User.WithdrawBalance.String())
	assert.True(t, result.User.Flagged)
	assert.Equal(t, "Claim rejected by admin", *result.User.FlagReason)

	_, err = env.admin.RejectClaim(ctx, adminID, RejectClaimRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestProcessWithdrawal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		balance     string
		amount      string
		status      string
		wantBalance string
		wantTotal   string
	}{
		{name: "approve debits balance", balance: "5", amount: "2", status: "approved", wantBalance: "3", wantTotal: "2"},
		{name: "approve clamps at zero", balance: "1.5", amount: "2", status: "approved", wantBalance: "0", wantTotal: "2"},
		{name: "reject keeps balance", balance: "5", amount: "2", status: "rejected", wantBalance: "5", wantTotal: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := env.createUser(t, "1")
			env.mutate(t, user.ID, func(u *store.User) { u.WithdrawBalance = decimal.RequireFromString(tt.balance) })
			w := env.pendingWithdrawal(t, user.ID, tt.amount)

			result, err := env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{
				WithdrawalID: w.ID,
				Status:       tt.status,
				Notes:        "paid out",
			})
			require.NoError(t, err)

			assert.Equal(t, tt.status, result.Withdrawal.Status)
			require.NotNil(t, result.Withdrawal.ProcessedAt)
			assert.Equal(t, fixedNow, *result.Withdrawal.ProcessedAt)
			require.NotNil(t, result.Withdrawal.AdminNotes)
			assert.Equal(t, "paid out", *result.Withdrawal.AdminNotes)
			assert.Equal(t, tt.wantBalance, result.User.WithdrawBalance.String())
			assert.False(t, result.User.WithdrawBalance.IsNegative())

			settings, err := env.repo.GetSettings(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, settings.TotalWithdrawals.String())

			_, err = env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{WithdrawalID: w.ID, Status: "approved"})
			assert.ErrorIs(t, err, ErrAlreadyProcessed)

			got, err := env.repo.GetUserByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBalance, got.WithdrawBalance.String(), "second approval must not debit")
		})
	}
}

func TestProcessWithdrawal_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")
	w := env.pendingWithdrawal(t, user.ID, "1")

	_, err := env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{WithdrawalID: w.ID, Status: "pending"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrWithdrawalIDRequired)

	_, err = env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{WithdrawalID: uuid.New(), Status: "approved"})
	assert.ErrorIs(t, err, ErrWithdrawalNotFound)
}

func TestProcessWithdrawal_NotifiesAndDispatches(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	env := newTestEnv(t)
	events := NewMockEventDispatcher(ctrl)
	notifier := NewMockWithdrawalNotifier(ctrl)
	env.admin.events = events
	env.admin.notifier = notifier

	user := env.createUser(t, "1")
	env.mutate(t, user.ID, func(u *store.User) { u.WithdrawBalance = decimal.NewFromInt(3) })
	w := env.pendingWithdrawal(t, user.ID, "1")

	events.EXPECT().DispatchWithdrawalProcessed(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, settled store.WithdrawalRequest) {
			assert.Equal(t, w.ID, settled.ID)
			assert.Equal(t, store.WithdrawalStatusApproved, settled.Status)
		})
	notifier.EXPECT().NotifyWithdrawalProcessed(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ store.User, _ store.WithdrawalRequest) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "notification must run under a deadline")
			return errors.New("bot blocked by user")
		})

	_, err := env.admin.ProcessWithdrawal(ctx, adminID, ProcessWithdrawalRequest{WithdrawalID: w.ID, Status: "APPROVED"})
	require.NoError(t, err)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	d := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}

	tests := []struct {
		name      string
		req       UpdateSettingsRequest
		wantErr   error
		wantEPA   string
		wantCPM   string
		wantLimit int
	}{
		{name: "nothing provided", req: UpdateSettingsRequest{}, wantErr: ErrNoValidSettings},
		{name: "zero earnings", req: UpdateSettingsRequest{EarningsPerAd: d("0")}, wantErr: ErrInvalidSettings},
		{name: "negative earnings", req: UpdateSettingsRequest{EarningsPerAd: d("-0.1")}, wantErr: ErrInvalidSettings},
		{name: "fractional limit", req: UpdateSettingsRequest{DailyAdLimit: d("2.5")}, wantErr: ErrInvalidSettings},
		{name: "zero limit", req: UpdateSettingsRequest{DailyAdLimit: d("0")}, wantErr: ErrInvalidSettings},
		{name: "one bad field rejects all", req: UpdateSettingsRequest{EarningsPerAd: d("0.001"), DailyAdLimit: d("-3")}, wantErr: ErrInvalidSettings},
		{name: "earnings only", req: UpdateSettingsRequest{EarningsPerAd: d("0.0012345")}, wantEPA: "0.00123", wantCPM: "1.23", wantLimit: 250},
		{name: "limit only", req: UpdateSettingsRequest{DailyAdLimit: d("100")}, wantEPA: "0.00035", wantCPM: "0.35", wantLimit: 100},
		{name: "both", req: UpdateSettingsRequest{EarningsPerAd: d("0.0005"), DailyAdLimit: d("1")}, wantEPA: "0.0005", wantCPM: "0.5", wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			before, err := env.repo.GetSettings(ctx)
			require.NoError(t, err)

			got, err := env.admin.UpdateSettings(ctx, adminID, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				after, err := env.repo.GetSettings(ctx)
				require.NoError(t, err)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantEPA, got.EarningsPerAd.String())
			assert.Equal(t, tt.wantCPM, got.CPMRate.String())
			assert.Equal(t, tt.wantLimit, got.DailyAdLimit)
			assert.Equal(t, before.Version+1, got.Version)
		})
	}
}

func TestUpdateSettings_AppliesToNextAdWatch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "1")
	epa := decimal.RequireFromString("0.001")

	_, err := env.admin.UpdateSettings(ctx, adminID, UpdateSettingsRequest{EarningsPerAd: &epa})
	require.NoError(t, err)

	result, err := env.ledger.RecordAdWatch(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.001", result.Earned.String())
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	active := env.createUser(t, "1")
	stale := env.createUser(t, "2")
	env.createUser(t, "3")

	_, err := env.ledger.RecordAdWatch(ctx, active.ID)
	require.NoError(t, err)
	env.mutate(t, stale.ID, func(u *store.User) {
		old := fixedNow.Add(-25 * time.Hour)
		u.LastAdWatch = &old
	})
	env.pendingWithdrawal(t, active.ID, "1.5")
	env.pendingWithdrawal(t, stale.ID, "2")

	stats, err := env.admin.Stats(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ActiveUsers24h)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalAdsWatched)
	assert.Equal(t, 2, stats.PendingWithdrawals)
	assert.Equal(t, "3.5", stats.TotalPendingAmount.String())

	persisted, err := env.repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), persisted.ActiveUsers24h)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.mutate(t, alice.ID, func(u *store.User) { u.Banned = true; u.Flagged = true })
	env.mutate(t, bob.ID, func(u *store.User) { u.DailyEarnings = decimal.RequireFromString("0.1") })

	tests := []struct {
		name    string
		req     ListUsersRequest
		want    []string
		wantErr error
	}{
		{name: "all", req: ListUsersRequest{Filter: "all"}, want: []string{"alice", "bob"}},
		{name: "banned", req: ListUsersRequest{Filter: "banned"}, want: []string{"alice"}},
		{name: "pending claims", req: ListUsersRequest{Filter: "pending-claims"}, want: []string{"bob"}},
		{name: "search", req: ListUsersRequest{Search: "USER-BO"}, want: []string{"bob"}},
		{name: "unknown filter", req: ListUsersRequest{Filter: "whales"}, wantErr: ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := env.admin.ListUsers(ctx, adminID, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var got []string
			for _, u := range users {
				got = append(got, u.ExternalID)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestListPendingWithdrawals(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "42")
	env.pendingWithdrawal(t, user.ID, "1")

	views, err := env.admin.ListPendingWithdrawals(ctx, adminID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "user-42", views[0].UserDisplayName)
	assert.Equal(t, "42", views[0].UserExternalID)
}

func TestExportUsersCSV(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.createUser(t, "7")
	env.mutate(t, user.ID, func(u *store.User) { u.WithdrawBalance = decimal.RequireFromString("1.25") })

	var buf bytes.Buffer
	n, err := env.admin.ExportUsersCSV(ctx, adminID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "user-7", records[1][1])
	assert.Equal(t, "1.25000", records[1][4])
	assert.Equal(t, "false", records[1][6])
}
