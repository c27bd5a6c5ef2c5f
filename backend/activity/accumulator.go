package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

var (
	ErrUnknownStat   = errors.New("unknown stat")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrNoUser        = errors.New("no authenticated user")
)

// Accumulator bumps per-user activity counters.
type Accumulator struct {
	store profile.Store
}

func NewAccumulator(store profile.Store) *Accumulator {
	return &Accumulator{store: store}
}

// IncrementStat adds amount to one counter and returns the counters after the
// write. Stores without an atomic increment get a read followed by a full
// stats write; two such calls racing on one user can lose an increment.
func (a *Accumulator) IncrementStat(ctx context.Context, uid string, stat profile.StatName, amount int) (profile.Stats, error) {
	p, err := a.increment(ctx, uid, stat, amount)
	if err != nil {
		return profile.Stats{}, err
	}
	return p.Stats, nil
}

// increment is IncrementStat returning the whole profile as it is after the
// write, so evaluation does not have to load it again.
func (a *Accumulator) increment(ctx context.Context, uid string, stat profile.StatName, amount int) (*profile.Profile, error) {
	if uid == "" {
		return nil, ErrNoUser
	}
	if _, ok := profile.ParseStatName(string(stat)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	if inc, ok := a.store.(profile.StatIncrementer); ok {
		stats, err := inc.IncrementStat(ctx, uid, stat, amount)
		if err != nil {
			return nil, err
		}
		p, err := a.store.GetProfile(ctx, uid)
		if err != nil {
			return nil, err
		}
		p.Stats = stats
		return p, nil
	}

	p, err := a.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	stats := p.Stats
	stats.Add(stat, amount)
	if err := a.store.UpdateProfile(ctx, uid, profile.Update{Stats: &stats}); err != nil {
		return nil, err
	}
	p.Stats = stats
	return p, nil
}
