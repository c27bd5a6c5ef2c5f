package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("profile not found")

// Store is the profile persistence boundary. The remote implementation talks to
// the external Profile API; the database implementation owns the data itself.
type Store interface {
	GetProfile(ctx context.Context, uid string) (*Profile, error)
	UpdateProfile(ctx context.Context, uid string, upd Update) error
	CreateProfile(ctx context.Context, p *Profile) error
}

// StatIncrementer is implemented by stores that can bump a counter atomically.
type StatIncrementer interface {
	IncrementStat(ctx context.Context, uid string, stat StatName, amount int) (Stats, error)
}

// AchievementAdder is implemented by stores that can insert into the
// achievement set atomically. It reports whether the id was new.
type AchievementAdder interface {
	AddAchievement(ctx context.Context, uid, achievementID string) (bool, error)
}

type bearerKey struct{}

// WithBearerToken stores the caller's token so remote calls act on their behalf.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}

// AdminRole computes the role an email gets from the admin list.
func AdminRole(email string, adminEmails []string) Role {
	email = normalizeEmail(email)
	if email == "" {
		return RoleUser
	}
	for _, admin := range adminEmails {
		if normalizeEmail(admin) == email {
			return RoleAdmin
		}
	}
	return RoleUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// InitializeUserRole returns the role of uid, creating the profile on first
// access. The stored role follows adminEmails: a listed email is promoted, an
// unlisted admin is demoted, and a changed email is written back. On error the
// role computed from adminEmails is returned alongside it.
func InitializeUserRole(ctx context.Context, store Store, uid, email string, adminEmails []string) (Role, error) {
	email = normalizeEmail(email)
	role := AdminRole(email, adminEmails)

	existing, err := store.GetProfile(ctx, uid)
	if err == nil {
		return role, syncRole(ctx, store, existing, email, role)
	}
	if !errors.Is(err, ErrNotFound) {
		return role, fmt.Errorf("load profile %s: %w", uid, err)
	}

	nickname := DefaultNickname(email)
	if nickname == "" {
		nickname = string(RoleUser)
	}
	p := &Profile{
		UID:          uid,
		Email:        email,
		Nickname:     nickname,
		DisplayName:  nickname,
		Role:         role,
		Achievements: []string{},
	}
	if err := store.CreateProfile(ctx, p); err != nil {
		return role, fmt.Errorf("create profile %s: %w", uid, err)
	}
	return role, nil
}

// syncRole writes role and email to p when they drifted. An empty email never
// overwrites a stored one.
func syncRole(ctx context.Context, store Store, p *Profile, email string, role Role) error {
	var (
		upd   Update
		dirty bool
	)
	if p.Role != role {
		upd.Role = &role
		dirty = true
	}
	if email != "" && p.Email != email {
		upd.Email = &email
		dirty = true
	}
	if !dirty {
		return nil
	}
	if err := store.UpdateProfile(ctx, p.UID, upd); err != nil {
		return fmt.Errorf("sync role of %s: %w", p.UID, err)
	}
	return nil
}

// RoleSync resolves roles for request handlers. It never fails: when the store
// is unreachable the error is logged and the admin list decides.
type RoleSync struct {
	store       Store
	adminEmails []string
	log         *zap.Logger
}

func NewRoleSync(store Store, adminEmails []string, log *zap.Logger) *RoleSync {
	if log == nil {
		log = zap.NewNop()
	}
	return &RoleSync{store: store, adminEmails: adminEmails, log: log.With(zap.String("service", "roles"))}
}

func (r *RoleSync) Initialize(ctx context.Context, uid, email string) Role {
	role, err := InitializeUserRole(ctx, r.store, uid, email, r.adminEmails)
	if err != nil {
		r.log.Warn("initialize user role", zap.String("user_id", uid), zap.String("fallback_role", string(role)), zap.Error(err))
	}
	return role
}
