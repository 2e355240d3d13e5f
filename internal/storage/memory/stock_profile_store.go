package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yuniezzx/MarketSeer/internal/domain"
	"github.com/yuniezzx/MarketSeer/internal/storage"
)

// StockProfileStore is an in-memory implementation of
// storage.StockProfileStore with the same patch semantics as the
// Postgres store: nil patch fields never overwrite stored values.
type StockProfileStore struct {
	mu     sync.RWMutex
	byCode map[string]*domain.StockProfile
}

// NewStockProfileStore creates a new in-memory stock profile store.
func NewStockProfileStore() *StockProfileStore {
	return &StockProfileStore{byCode: make(map[string]*domain.StockProfile)}
}

// Upsert applies a reconciled patch to the profile keyed by patch.Code.
func (s *StockProfileStore) Upsert(_ context.Context, p *domain.StockProfilePatch) (storage.UpsertOutcome, error) {
	if p == nil || p.Code == "" || p.Name == "" {
		return "", storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, exists := s.byCode[p.Code]
	if !exists {
		profile := &domain.StockProfile{
			Code:      p.Code,
			Name:      p.Name,
			Exchange:  p.Exchange,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyPatch(profile, p)
		s.byCode[p.Code] = profile
		return storage.OutcomeCreated, nil
	}

	existing.Name = p.Name
	existing.Exchange = p.Exchange
	applyPatch(existing, p)
	existing.UpdatedAt = now
	return storage.OutcomeUpdated, nil
}

// applyPatch copies every non-nil patch field onto the profile.
func applyPatch(profile *domain.StockProfile, p *domain.StockProfilePatch) {
	if p.FullName != nil {
		v := *p.FullName
		profile.FullName = &v
	}
	if p.Market != nil {
		v := *p.Market
		profile.Market = &v
	}
	if p.IndustryCode != nil {
		v := *p.IndustryCode
		profile.IndustryCode = &v
	}
	if p.Industry != nil {
		v := *p.Industry
		profile.Industry = &v
	}
	if p.ListDate != nil {
		v := *p.ListDate
		profile.ListDate = &v
	}
	if p.EstablishDate != nil {
		v := *p.EstablishDate
		profile.EstablishDate = &v
	}
	if p.MainBusiness != nil {
		v := *p.MainBusiness
		profile.MainBusiness = &v
	}
	if p.Scope != nil {
		v := *p.Scope
		profile.Scope = &v
	}
	if p.Status != nil {
		v := *p.Status
		profile.Status = &v
	}
	if p.TotalShares != nil {
		v := *p.TotalShares
		profile.TotalShares = &v
	}
	if p.FloatShares != nil {
		v := *p.FloatShares
		profile.FloatShares = &v
	}
	if p.TotalMarketCap != nil {
		v := *p.TotalMarketCap
		profile.TotalMarketCap = &v
	}
	if p.FloatMarketCap != nil {
		v := *p.FloatMarketCap
		profile.FloatMarketCap = &v
	}
}

// GetByCode retrieves one profile. Returns ErrNotFound if not exists.
func (s *StockProfileStore) GetByCode(_ context.Context, code string) (*domain.StockProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.byCode[code]
	if !exists {
		return nil, storage.ErrNotFound
	}
	profCopy := *p
	return &profCopy, nil
}

// List retrieves all profiles ordered by code ASC.
func (s *StockProfileStore) List(_ context.Context) ([]*domain.StockProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make([]*domain.StockProfile, 0, len(s.byCode))
	for _, p := range s.byCode {
		profCopy := *p
		profiles = append(profiles, &profCopy)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Code < profiles[j].Code })
	return profiles, nil
}

var _ storage.StockProfileStore = (*StockProfileStore)(nil)
