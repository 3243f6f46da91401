// Package memory is a map-backed store.Repository for development and tests.
package memory

import (
	"adledger-server/internal/store"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps every collection behind one mutex. Records are copied on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	users          map[uuid.UUID]store.User
	byExternalID   map[string]uuid.UUID
	byReferralCode map[string]uuid.UUID
	withdrawals    map[uuid.UUID]store.WithdrawalRequest
	referrals      map[uuid.UUID]store.Referral // keyed by referee id
	settings       store.Settings

	now func() time.Time
}

var _ store.Repository = (*Store)(nil)

// New returns an empty store seeded with the default settings record
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock is New with a custom timestamp source
func NewWithClock(now func() time.Time) *Store {
	s := &Store{
		users:          make(map[uuid.UUID]store.User),
		byExternalID:   make(map[string]uuid.UUID),
		byReferralCode: make(map[string]uuid.UUID),
		withdrawals:    make(map[uuid.UUID]store.WithdrawalRequest),
		referrals:      make(map[uuid.UUID]store.Referral),
		settings:       store.DefaultSettings(),
		now:            now,
	}
	s.settings.UpdatedAt = now()
	return s
}

func (s *Store) CreateUser(_ context.Context, params store.CreateUserParams) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byExternalID[params.ExternalID]; ok {
		return store.User{}, fmt.Errorf("external id %q: %w", params.ExternalID, store.ErrConflict)
	}
	if _, ok := s.byReferralCode[params.ReferralCode]; ok {
		return store.User{}, fmt.Errorf("referral code %q: %w", params.ReferralCode, store.ErrConflict)
	}
	if params.ReferrerID != nil {
		if _, ok := s.users[*params.ReferrerID]; !ok {
			return store.User{}, fmt.Errorf("referrer %s: %w", params.ReferrerID, store.ErrNotFound)
		}
	}

	now := s.now()
	user := store.User{
		ID:              uuid.New(),
		ExternalID:      params.ExternalID,
		DisplayName:     params.DisplayName,
		ReferralCode:    params.ReferralCode,
		ReferredBy:      copyUUID(params.ReferrerID),
		WithdrawBalance: decimal.Zero,
		DailyEarnings:   decimal.Zero,
		TotalEarnings:   decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.users[user.ID] = user
	s.byExternalID[user.ExternalID] = user.ID
	s.byReferralCode[user.ReferralCode] = user.ID

	if params.ReferrerID != nil {
		s.referrals[user.ID] = store.Referral{
			ID:         uuid.New(),
			ReferrerID: *params.ReferrerID,
			RefereeID:  user.ID,
			Commission: decimal.Zero,
			CreatedAt:  now,
		}
	}
	return copyUser(user), nil
}

func (s *Store) GetUserByID(_ context.Context, userID uuid.UUID) (store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return copyUser(user), nil
}

func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (store.User, error) {
	s.mu.RLock()
	id, ok := s.byExternalID[externalID]
	s.mu.RUnlock()
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (store.User, error) {
	s.mu.RLock()
	id, ok := s.byReferralCode[code]
	s.mu.RUnlock()
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) MutateUser(_ context.Context, userID uuid.UUID, fn func(*store.User) error) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[userID]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	working := copyUser(current)
	if err := fn(&working); err != nil {
		return store.User{}, err
	}
	s.users[userID] = s.applyUserUpdate(current, working)
	return copyUser(s.users[userID]), nil
}

// applyUserUpdate keeps identity fields from current and takes ledger fields from next
func (s *Store) applyUserUpdate(current, next store.User) store.User {
	updated := current
	updated.DisplayName = next.DisplayName
	updated.WithdrawBalance = next.WithdrawBalance
	updated.DailyEarnings = next.DailyEarnings
	updated.TotalEarnings = next.TotalEarnings
	updated.AdsWatched = next.AdsWatched
	updated.DailyAdsWatched = next.DailyAdsWatched
	updated.LastAdWatch = copyTime(next.LastAdWatch)
	updated.Banned = next.Banned
	updated.Flagged = next.Flagged
	updated.FlagReason = copyString(next.FlagReason)
	updated.UpdatedAt = s.now()
	return updated
}

func (s *Store) ListUsers(_ context.Context, params store.ListUsersParams) ([]store.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(params.Search))
	users := make([]store.User, 0, len(s.users))
	for _, u := range s.users {
		if !matchesFilter(u, params.Filter) || !matchesSearch(u, search) {
			continue
		}
		users = append(users, copyUser(u))
	}

	sort.Slice(users, func(i, j int) bool {
		a, b := users[i].LastAdWatch, users[j].LastAdWatch
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})

	if params.Limit > 0 && len(users) > params.Limit {
		users = users[:params.Limit]
	}
	return users, nil
}

func matchesFilter(u store.User, filter string) bool {
	switch filter {
	case store.UserFilterBanned:
		return u.Banned
	case store.UserFilterFlagged:
		return u.Flagged
	case store.UserFilterPendingClaims:
		return u.DailyEarnings.IsPositive()
	}
	return true
}

func matchesSearch(u store.User, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.DisplayName), search) ||
		strings.Contains(strings.ToLower(u.ExternalID), search) ||
		strings.Contains(u.ID.String(), search)
}

func (s *Store) CountActiveUsersSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, u := range s.users {
		if u.LastAdWatch != nil && !u.LastAdWatch.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateWithdrawal(_ context.Context, params store.CreateWithdrawalParams) (store.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[params.UserID]; !ok {
		return store.WithdrawalRequest{}, store.ErrNotFound
	}
	w := store.WithdrawalRequest{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Amount:      params.Amount,
		Status:      store.WithdrawalStatusPending,
		Method:      params.Method,
		Destination: params.Destination,
		CreatedAt:   s.now(),
	}
	s.withdrawals[w.ID] = w
	return copyWithdrawal(w), nil
}

func (s *Store) GetWithdrawalByID(_ context.Context, withdrawalID uuid.UUID) (store.WithdrawalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.withdrawals[withdrawalID]
	if !ok {
		return store.WithdrawalRequest{}, store.ErrNotFound
	}
	return copyWithdrawal(w), nil
}

func (s *Store) ListWithdrawalsByUser(_ context.Context, userID uuid.UUID) ([]store.WithdrawalRequest, error) {
	return s.listWithdrawals(func(w store.WithdrawalRequest) bool { return w.UserID == userID }, true), nil
}

func (s *Store) ListPendingWithdrawals(_ context.Context) ([]store.WithdrawalRequest, error) {
	return s.listWithdrawals(func(w store.WithdrawalRequest) bool {
		return w.Status == store.WithdrawalStatusPending
	}, false), nil
}

func (s *Store) listWithdrawals(keep func(store.WithdrawalRequest) bool, newestFirst bool) []store.WithdrawalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []store.WithdrawalRequest{}
	for _, w := range s.withdrawals {
		if keep(w) {
			out = append(out, copyWithdrawal(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) SettleWithdrawal(_ context.Context, withdrawalID uuid.UUID, fn func(*store.WithdrawalRequest, *store.User) error) (store.WithdrawalRequest, store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.withdrawals[withdrawalID]
	if !ok {
		return store.WithdrawalRequest{}, store.User{}, store.ErrNotFound
	}
	owner, ok := s.users[w.UserID]
	if !ok {
		return store.WithdrawalRequest{}, store.User{}, store.ErrNotFound
	}

	workingW := copyWithdrawal(w)
	workingU := copyUser(owner)
	if err := fn(&workingW, &workingU); err != nil {
		return store.WithdrawalRequest{}, store.User{}, err
	}

	w.Status = workingW.Status
	w.AdminNotes = copyString(workingW.AdminNotes)
	w.ProcessedAt = copyTime(workingW.ProcessedAt)
	s.withdrawals[w.ID] = w
	s.users[owner.ID] = s.applyUserUpdate(owner, workingU)

	return copyWithdrawal(w), copyUser(s.users[owner.ID]), nil
}

func (s *Store) GetReferralsByReferrer(_ context.Context, referrerID uuid.UUID) ([]store.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []store.Referral{}
	for _, r := range s.referrals {
		if r.ReferrerID == referrerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddReferralCommission(_ context.Context, referrerID, refereeID uuid.UUID, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.referrals[refereeID]
	if !ok || r.ReferrerID != referrerID {
		return store.ErrNotFound
	}
	r.Commission = r.Commission.Add(amount)
	s.referrals[refereeID] = r
	return nil
}

func (s *Store) GetSettings(_ context.Context) (store.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) UpdateSettings(_ context.Context, fn func(*store.Settings) error) (store.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.settings
	if err := fn(&working); err != nil {
		return store.Settings{}, err
	}
	s.settings.EarningsPerAd = working.EarningsPerAd
	s.settings.DailyAdLimit = working.DailyAdLimit
	s.settings.CPMRate = working.CPMRate
	s.settings.Version++
	s.settings.UpdatedAt = s.now()
	return s.settings, nil
}

func (s *Store) IncrementStats(_ context.Context, delta store.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings.TotalUsers += delta.Users
	s.settings.TotalAdsWatched += delta.AdsWatched
	s.settings.TotalEarnings = s.settings.TotalEarnings.Add(delta.Earnings)
	s.settings.TotalWithdrawals = s.settings.TotalWithdrawals.Add(delta.Withdrawals)
	s.settings.UpdatedAt = s.now()
	return nil
}

func (s *Store) SetActiveUsers24h(_ context.Context, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.ActiveUsers24h = count
	return nil
}

func copyUser(u store.User) store.User {
	u.ReferredBy = copyUUID(u.ReferredBy)
	u.LastAdWatch = copyTime(u.LastAdWatch)
	u.FlagReason = copyString(u.FlagReason)
	return u
}

func copyWithdrawal(w store.WithdrawalRequest) store.WithdrawalRequest {
	w.AdminNotes = copyString(w.AdminNotes)
	w.ProcessedAt = copyTime(w.ProcessedAt)
	return w
}

func copyUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
