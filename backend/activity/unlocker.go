package activity

import (
	"context"
	"fmt"

	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/notify"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"go.uber.org/zap"
)

// CourseCounter reports how many courses a user has finished.
type CourseCounter interface {
	CompletedCourses(ctx context.Context, uid string) (int, error)
}

// Unlocker evaluates the catalog for a user and persists new achievements.
type Unlocker struct {
	store    profile.Store
	catalog  *achievements.Catalog
	courses  CourseCounter
	notifier notify.Notifier
	log      *zap.Logger
}

// NewUnlocker wires the unlock path. courses may be nil, in which case the
// completed course count is taken as zero.
func NewUnlocker(store profile.Store, catalog *achievements.Catalog, courses CourseCounter, notifier notify.Notifier, log *zap.Logger) *Unlocker {
	if notifier == nil {
		notifier = notify.Nop()
	}
	return &Unlocker{
		store:    store,
		catalog:  catalog,
		courses:  courses,
		notifier: notifier,
		log:      log.With(zap.String("service", "unlocker")),
	}
}

func (u *Unlocker) Catalog() *achievements.Catalog { return u.catalog }

// CheckAndUnlockAchievement adds id to the user's achievement set and reports
// whether it was not there before.
func (u *Unlocker) CheckAndUnlockAchievement(ctx context.Context, uid, id string) (bool, error) {
	if uid == "" {
		return false, ErrNoUser
	}
	if adder, ok := u.store.(profile.AchievementAdder); ok {
		return adder.AddAchievement(ctx, uid, id)
	}
	p, err := u.store.GetProfile(ctx, uid)
	if err != nil {
		return false, err
	}
	return u.appendAchievement(ctx, p, id)
}

// appendAchievement writes p's set plus id back through the plain Store
// interface, trusting p as the current state.
func (u *Unlocker) appendAchievement(ctx context.Context, p *profile.Profile, id string) (bool, error) {
	if p.HasAchievement(id) {
		return false, nil
	}
	ids := append(append([]string{}, p.Achievements...), id)
	if err := u.store.UpdateProfile(ctx, p.UID, profile.Update{Achievements: ids}); err != nil {
		return false, err
	}
	return true, nil
}

// Unlock stores a and notifies the user when it is new.
func (u *Unlocker) Unlock(ctx context.Context, uid string, a achievements.Achievement) (bool, error) {
	added, err := u.CheckAndUnlockAchievement(ctx, uid, a.ID)
	if err != nil || !added {
		return false, err
	}
	u.announce(ctx, uid, a)
	return true, nil
}

// unlockLoaded is Unlock for a profile the caller has just read.
func (u *Unlocker) unlockLoaded(ctx context.Context, p *profile.Profile, a achievements.Achievement) (bool, error) {
	var (
		added bool
		err   error
	)
	if adder, ok := u.store.(profile.AchievementAdder); ok {
		added, err = adder.AddAchievement(ctx, p.UID, a.ID)
	} else {
		added, err = u.appendAchievement(ctx, p, a.ID)
	}
	if err != nil || !added {
		return false, err
	}
	u.announce(ctx, p.UID, a)
	return true, nil
}

func (u *Unlocker) announce(ctx context.Context, uid string, a achievements.Achievement) {
	note := notify.Notification{ID: a.ID, Icon: a.Icon, Name: a.Name, Description: a.Description}
	if err := u.notifier.Notify(ctx, uid, note); err != nil {
		u.log.Warn("notify failed", zap.String("user_id", uid), zap.String("achievement_id", a.ID), zap.Error(err))
	}
}

// Evaluate runs the stat, action and custom checks against the stored
// profile and unlocks everything that qualifies.
func (u *Unlocker) Evaluate(ctx context.Context, uid string, action achievements.Action) ([]achievements.Achievement, error) {
	if uid == "" {
		return nil, ErrNoUser
	}
	p, err := u.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	return u.evaluate(ctx, p, p.Stats, action)
}

// EvaluateProfile is Evaluate for a profile the caller already holds, such as
// the result of an increment. p is updated with whatever gets unlocked.
func (u *Unlocker) EvaluateProfile(ctx context.Context, p *profile.Profile, action achievements.Action) ([]achievements.Achievement, error) {
	if p == nil || p.UID == "" {
		return nil, ErrNoUser
	}
	return u.evaluate(ctx, p, p.Stats, action)
}

func (u *Unlocker) evaluate(ctx context.Context, p *profile.Profile, stats profile.Stats, action achievements.Action) ([]achievements.Achievement, error) {
	ids := achievements.CheckAchievements(u.catalog, stats, action)
	ids = append(ids, achievements.CheckCustom(u.catalog, u.facts(ctx, p))...)

	var unlocked []achievements.Achievement
	for _, id := range ids {
		if p.HasAchievement(id) {
			continue
		}
		a, ok := u.catalog.Get(id)
		if !ok {
			return unlocked, fmt.Errorf("achievement %s missing from catalog", id)
		}
		added, err := u.unlockLoaded(ctx, p, a)
		if err != nil {
			return unlocked, fmt.Errorf("unlock %s for %s: %w", id, p.UID, err)
		}
		if added {
			unlocked = append(unlocked, a)
			p.Achievements = append(p.Achievements, id)
		}
	}
	return unlocked, nil
}

func (u *Unlocker) facts(ctx context.Context, p *profile.Profile) achievements.Facts {
	facts := achievements.Facts{
		Followers:     p.Followers,
		ProfilesLiked: p.ProfilesLiked,
		RegisteredAt:  p.CreatedAt,
	}
	if u.courses != nil {
		n, err := u.courses.CompletedCourses(ctx, p.UID)
		if err != nil {
			u.log.Warn("count completed courses", zap.String("user_id", p.UID), zap.Error(err))
		} else {
			facts.CoursesCompleted = n
		}
	}
	return facts
}
