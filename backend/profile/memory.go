package profile

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps profiles in process memory. It backs local development
// (PROFILE_STORE=memory) and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*Profile)}
}

func (s *MemoryStore) GetProfile(_ context.Context, uid string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) CreateProfile(_ context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.UID]; ok {
		return nil
	}
	stored := clone(p)
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	if stored.Role == "" {
		stored.Role = RoleUser
	}
	s.profiles[p.UID] = stored
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, uid string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[uid]
	if !ok {
		return ErrNotFound
	}
	upd.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) IncrementStat(_ context.Context, uid string, stat StatName, amount int) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[uid]
	if !ok {
		return Stats{}, ErrNotFound
	}
	p.Stats.Add(stat, amount)
	p.UpdatedAt = time.Now().UTC()
	return p.Stats, nil
}

func (s *MemoryStore) AddAchievement(_ context.Context, uid, achievementID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[uid]
	if !ok {
		return false, ErrNotFound
	}
	if p.HasAchievement(achievementID) {
		return false, nil
	}
	p.Achievements = append(p.Achievements, achievementID)
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

// SetSocial overwrites the follower and liked-profile counters. The service
// never owns these numbers; in memory mode they are seeded directly.
func (s *MemoryStore) SetSocial(uid string, followers, profilesLiked int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[uid]
	if !ok {
		return ErrNotFound
	}
	p.Followers = followers
	p.ProfilesLiked = profilesLiked
	return nil
}

func clone(p *Profile) *Profile {
	c := *p
	c.Achievements = append([]string{}, p.Achievements...)
	return &c
}
