package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"foodshare/internal/store"
	"foodshare/pkg/types"

	"github.com/google/uuid"
)

// In-memory stand-ins for the repositories. They mirror the sentinel errors
// and transition rules of internal/store.

type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*types.Account
	next int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: make(map[string]*types.Account)}
}

func (m *memAccounts) put(a *types.Account) *types.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		m.next++
		a.ID = fmt.Sprintf("acc%03d", m.next)
	}
	cp := *a
	m.byID[a.ID] = &cp
	return a
}

func (m *memAccounts) find(pred func(*types.Account) bool) (*types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if pred(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, types.ErrAccountNotFound
}

func (m *memAccounts) Account(_ context.Context, id string) (*types.Account, error) {
	return m.find(func(a *types.Account) bool { return a.ID == id })
}

func (m *memAccounts) AccountByEmail(_ context.Context, email string) (*types.Account, error) {
	return m.find(func(a *types.Account) bool { return strings.EqualFold(a.Email, strings.TrimSpace(email)) })
}

func (m *memAccounts) AccountByVerificationToken(_ context.Context, token uuid.UUID) (*types.Account, error) {
	return m.find(func(a *types.Account) bool { return a.VerificationToken == token })
}

func (m *memAccounts) Donor(_ context.Context, id string) (*types.Account, error) {
	return m.find(func(a *types.Account) bool { return a.ID == id && !a.IsStaff })
}

func (m *memAccounts) Donors(_ context.Context) ([]*types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	donors := make([]*types.Account, 0)
	for _, a := range m.byID {
		if !a.IsStaff {
			cp := *a
			donors = append(donors, &cp)
		}
	}
	sort.Slice(donors, func(i, j int) bool { return donors[i].ID < donors[j].ID })
	return donors, nil
}

func (m *memAccounts) CreateAccount(ctx context.Context, a *types.Account) error {
	if taken, _ := m.UsernameTaken(ctx, a.Username, ""); taken {
		return types.ErrDuplicateUsername
	}
	if taken, _ := m.EmailTaken(ctx, a.Email, ""); taken {
		return types.ErrDuplicateEmail
	}
	if a.VerificationToken == uuid.Nil {
		a.VerificationToken = uuid.New()
	}
	now := time.Now()
	a.TokenCreatedAt = now
	a.DateJoined = now
	m.put(a)
	return nil
}

func (m *memAccounts) update(id string, fn func(*types.Account) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || !fn(a) {
		return types.ErrAccountNotFound
	}
	return nil
}

func (m *memAccounts) UpdateAccount(_ context.Context, account *types.Account) error {
	return m.update(account.ID, func(a *types.Account) bool {
		a.Username = account.Username
		a.Email = account.Email
		a.PasswordHash = account.PasswordHash
		a.IsActive = account.IsActive
		return true
	})
}

func (m *memAccounts) MarkEmailVerified(_ context.Context, id string) error {
	return m.update(id, func(a *types.Account) bool {
		a.EmailVerified = true
		return true
	})
}

func (m *memAccounts) RotateVerificationToken(_ context.Context, id string) (uuid.UUID, time.Time, error) {
	token, now := uuid.New(), time.Now()
	err := m.update(id, func(a *types.Account) bool {
		a.VerificationToken = token
		a.TokenCreatedAt = now
		return true
	})
	return token, now, err
}

func (m *memAccounts) SetActive(_ context.Context, id string, active bool) error {
	return m.update(id, func(a *types.Account) bool {
		if a.IsStaff {
			return false
		}
		a.IsActive = active
		return true
	})
}

func (m *memAccounts) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.IsStaff {
		return types.ErrAccountNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memAccounts) UsernameTaken(_ context.Context, username, excludeID string) (bool, error) {
	_, err := m.find(func(a *types.Account) bool {
		return a.ID != excludeID && strings.EqualFold(a.Username, strings.TrimSpace(username))
	})
	return err == nil, nil
}

func (m *memAccounts) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	_, err := m.find(func(a *types.Account) bool {
		return a.ID != excludeID && strings.EqualFold(a.Email, strings.TrimSpace(email))
	})
	return err == nil, nil
}

type memDonations struct {
	mu        sync.Mutex
	accounts  *memAccounts
	donations []*types.Donation
	items     map[string][]*types.FoodItem
	seq       int64
	failNext  error
}

func newMemDonations(accounts *memAccounts) *memDonations {
	return &memDonations{accounts: accounts, items: make(map[string][]*types.FoodItem)}
}

func (m *memDonations) withDonor(d *types.Donation) *types.DonationWithDonor {
	out := &types.DonationWithDonor{Donation: *d}
	if a, err := m.accounts.Account(context.Background(), d.DonorID); err == nil {
		out.DonorName = a.Username
	}
	return out
}

func (m *memDonations) CreateDonation(_ context.Context, d *types.Donation, items []*types.FoodItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}

	m.seq++
	d.ID = fmt.Sprintf("don%03d", m.seq)
	d.DonationNo = types.FormatDonationNo(m.seq)
	d.Status = types.DonationStatusPending
	d.SubmittedAt = time.Now().Add(time.Duration(m.seq) * time.Second)
	m.donations = append(m.donations, d)
	m.items[d.ID] = m.prepareItems(d.ID, items)
	return nil
}

func (m *memDonations) prepareItems(donationID string, items []*types.FoodItem) []*types.FoodItem {
	for i, item := range items {
		if item.ID == "" {
			item.ID = fmt.Sprintf("%s-item%d", donationID, i+1)
		}
		if item.Status == "" {
			item.Status = types.FoodItemStatusPending
		}
		item.DonationID = donationID
	}
	return items
}

func (m *memDonations) lookup(no string) *types.Donation {
	for _, d := range m.donations {
		if d.DonationNo == no {
			return d
		}
	}
	return nil
}

func (m *memDonations) Donation(_ context.Context, no string) (*types.DonationWithDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.lookup(no)
	if d == nil {
		return nil, types.ErrDonationNotFound
	}
	return m.withDonor(d), nil
}

func (m *memDonations) filtered(filter store.DonationFilter) []*types.Donation {
	out := make([]*types.Donation, 0)
	for i := len(m.donations) - 1; i >= 0; i-- {
		d := m.donations[i]
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (m *memDonations) CountDonations(_ context.Context, filter store.DonationFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filtered(filter)), nil
}

func (m *memDonations) ListDonations(_ context.Context, filter store.DonationFilter, limit, offset int) ([]*types.DonationWithDonor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.filtered(filter)
	out := make([]*types.DonationWithDonor, 0)
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, m.withDonor(all[i]))
	}
	return out, nil
}

func (m *memDonations) UpdateStatus(_ context.Context, no string, status types.DonationStatus) (types.DonationStatus, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.lookup(no)
	if d == nil {
		return "", false, types.ErrDonationNotFound
	}
	previous := d.Status
	if previous == status {
		return previous, false, nil
	}
	if !previous.CanTransitionTo(status) {
		return previous, false, types.ErrInvalidTransition
	}
	d.Status = status
	return previous, true, nil
}

func (m *memDonations) UpdateDonation(_ context.Context, donation *types.Donation, items []*types.FoodItem) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var d *types.Donation
	for _, existing := range m.donations {
		if existing.ID == donation.ID {
			d = existing
		}
	}
	if d == nil {
		return nil, types.ErrDonationNotFound
	}

	d.Contact = donation.Contact
	d.Address = donation.Address
	d.DeliveryMethod = donation.DeliveryMethod
	d.PreferredDate = donation.PreferredDate
	d.PreferredTime = donation.PreferredTime
	d.DropoffLocation = donation.DropoffLocation
	d.Remarks = donation.Remarks

	if items == nil {
		return nil, nil
	}
	removed := keysOf(m.items[d.ID])
	m.items[d.ID] = m.prepareItems(d.ID, items)
	return removed, nil
}

func (m *memDonations) DeleteDonation(_ context.Context, no string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.donations {
		if d.DonationNo == no {
			keys := keysOf(m.items[d.ID])
			delete(m.items, d.ID)
			m.donations = append(m.donations[:i], m.donations[i+1:]...)
			return keys, nil
		}
	}
	return nil, types.ErrDonationNotFound
}

func keysOf(items []*types.FoodItem) []string {
	keys := make([]string, 0)
	for _, item := range items {
		if item.PhotoKey != nil {
			keys = append(keys, *item.PhotoKey)
		}
	}
	return keys
}

type memItems struct {
	d *memDonations
}

func (m memItems) ItemsByDonation(_ context.Context, donationID string) ([]*types.FoodItem, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return append([]*types.FoodItem(nil), m.d.items[donationID]...), nil
}

func (m memItems) all() []*types.FoodItemListing {
	out := make([]*types.FoodItemListing, 0)
	for i := len(m.d.donations) - 1; i >= 0; i-- {
		d := m.d.donations[i]
		donor := m.d.withDonor(d)
		for _, item := range m.d.items[d.ID] {
			out = append(out, &types.FoodItemListing{
				FoodItem:    *item,
				DonationNo:  d.DonationNo,
				DonorName:   donor.DonorName,
				SubmittedAt: d.SubmittedAt,
			})
		}
	}
	return out
}

func (m memItems) CountItems(_ context.Context) (int, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	return len(m.all()), nil
}

func (m memItems) ListItems(_ context.Context, limit, offset int) ([]*types.FoodItemListing, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	all := m.all()
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m memItems) UpdateStatus(_ context.Context, itemID string, status types.FoodItemStatus) (types.FoodItemStatus, bool, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, items := range m.d.items {
		for _, item := range items {
			if item.ID != itemID {
				continue
			}
			previous := item.Status
			if previous == status {
				return previous, false, nil
			}
			if !previous.CanTransitionTo(status) {
				return previous, false, types.ErrInvalidTransition
			}
			item.Status = status
			return previous, true, nil
		}
	}
	return "", false, types.ErrFoodItemNotFound
}

func (m memItems) PhotoKeysByDonor(_ context.Context, donorID string) ([]string, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	keys := make([]string, 0)
	for _, d := range m.d.donations {
		if d.DonorID == donorID {
			keys = append(keys, keysOf(m.d.items[d.ID])...)
		}
	}
	return keys, nil
}

type memStats struct {
	d *memDonations
}

func (m memStats) AccountCounts(_ context.Context) (types.AccountCounts, error) {
	var counts types.AccountCounts
	m.d.accounts.mu.Lock()
	defer m.d.accounts.mu.Unlock()
	for _, a := range m.d.accounts.byID {
		if a.IsStaff {
			counts.Staff++
		} else {
			counts.Donors++
		}
	}
	return counts, nil
}

func (m memStats) DonationStatusCounts(_ context.Context, donorID string) (map[types.DonationStatus]int, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	counts := make(map[types.DonationStatus]int)
	for _, status := range types.AllDonationStatuses {
		counts[status] = 0
	}
	for _, d := range m.d.filtered(store.DonationFilter{DonorID: donorID}) {
		counts[d.Status]++
	}
	return counts, nil
}

func (m memStats) FoodItemTotals(_ context.Context) (types.FoodItemTotals, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	var totals types.FoodItemTotals
	for _, items := range m.d.items {
		for _, item := range items {
			totals.Total++
			totals.Quantity += item.Quantity
			if item.Status == types.FoodItemStatusRedistributed {
				totals.Redistributed++
			}
		}
	}
	return totals, nil
}

func (m memStats) CategoryCounts(_ context.Context) ([]types.CategoryCount, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	byCategory := make(map[types.FoodCategory]int)
	for _, items := range m.d.items {
		for _, item := range items {
			byCategory[item.Category]++
		}
	}
	counts := make([]types.CategoryCount, 0, len(byCategory))
	for category, n := range byCategory {
		counts = append(counts, types.CategoryCount{Category: category, Count: n})
	}
	return counts, nil
}

func (m memStats) MonthlyDonationCounts(_ context.Context, since time.Time) ([]types.MonthCount, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	byMonth := make(map[time.Time]int)
	for _, d := range m.d.donations {
		if d.SubmittedAt.Before(since) {
			continue
		}
		at := d.SubmittedAt.UTC()
		byMonth[time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}
	counts := make([]types.MonthCount, 0, len(byMonth))
	for month, n := range byMonth {
		counts = append(counts, types.MonthCount{Month: month, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Month.Before(counts[j].Month) })
	return counts, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Put(_ context.Context, key, _ string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) URL(_ context.Context, key string) (string, error) {
	return "/media/" + key, nil
}

func (m *memStorage) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *memStorage) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}
