package activity

import (
	"context"

	"github.com/Koloda55SA/RaDev-sub001/backend/achievements"
	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
	"go.uber.org/zap"
)

// Tracker is the fire-and-forget entry point for activity telemetry. Its
// methods never fail: errors are logged and the event is dropped.
type Tracker struct {
	acc      *Accumulator
	unlocker *Unlocker
	log      *zap.Logger
}

func NewTracker(acc *Accumulator, unlocker *Unlocker, log *zap.Logger) *Tracker {
	return &Tracker{acc: acc, unlocker: unlocker, log: log.With(zap.String("service", "tracker"))}
}

func (t *Tracker) TrackProjectView(ctx context.Context, uid string) []achievements.Achievement {
	return t.track(ctx, uid, profile.ProjectsViewed, achievements.ActionNone)
}

func (t *Tracker) TrackBlogRead(ctx context.Context, uid string) []achievements.Achievement {
	return t.track(ctx, uid, profile.BlogPostsRead, achievements.ActionNone)
}

func (t *Tracker) TrackCodeRun(ctx context.Context, uid string) []achievements.Achievement {
	return t.track(ctx, uid, profile.CodeRuns, achievements.ActionNone)
}

func (t *Tracker) TrackMessageSent(ctx context.Context, uid string) []achievements.Achievement {
	return t.track(ctx, uid, profile.MessagesSent, achievements.ActionNone)
}

func (t *Tracker) TrackLogin(ctx context.Context, uid string) []achievements.Achievement {
	return t.track(ctx, uid, profile.LoginCount, achievements.ActionLogin)
}

// Track increments stat by one and evaluates the catalog against the new
// counters, optionally with an action.
func (t *Tracker) Track(ctx context.Context, uid string, stat profile.StatName, action achievements.Action) []achievements.Achievement {
	return t.track(ctx, uid, stat, action)
}

func (t *Tracker) track(ctx context.Context, uid string, stat profile.StatName, action achievements.Action) []achievements.Achievement {
	if uid == "" {
		return nil
	}
	p, err := t.acc.increment(ctx, uid, stat, 1)
	if err != nil {
		t.log.Warn("increment stat", zap.String("user_id", uid), zap.String("stat", string(stat)), zap.Error(err))
		return nil
	}
	unlocked, err := t.unlocker.EvaluateProfile(ctx, p, action)
	if err != nil {
		t.log.Warn("evaluate achievements", zap.String("user_id", uid), zap.Error(err))
	}
	return unlocked
}

// RecordAction evaluates the catalog for an action without touching counters.
func (t *Tracker) RecordAction(ctx context.Context, uid string, action achievements.Action) []achievements.Achievement {
	if uid == "" {
		return nil
	}
	unlocked, err := t.unlocker.Evaluate(ctx, uid, action)
	if err != nil {
		t.log.Warn("evaluate action", zap.String("user_id", uid), zap.String("action", string(action)), zap.Error(err))
	}
	return unlocked
}

// TrackLessonCompletion fires the lesson-completion action and, when a chapter
// was just finished, unlocks its chapter achievement.
func (t *Tracker) TrackLessonCompletion(ctx context.Context, uid string, chapter *achievements.Achievement) []achievements.Achievement {
	unlocked := t.RecordAction(ctx, uid, achievements.ActionCompleteLesson)
	if chapter == nil || uid == "" {
		return unlocked
	}
	added, err := t.unlocker.Unlock(ctx, uid, *chapter)
	if err != nil {
		t.log.Warn("unlock chapter achievement", zap.String("user_id", uid), zap.String("achievement_id", chapter.ID), zap.Error(err))
		return unlocked
	}
	if added {
		unlocked = append(unlocked, *chapter)
	}
	return unlocked
}
