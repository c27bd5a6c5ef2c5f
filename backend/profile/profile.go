package profile

import (
	"strings"
	"time"
)

// StatName identifies one of the per-user activity counters.
type StatName string

const (
	ProjectsViewed StatName = "projectsViewed"
	BlogPostsRead  StatName = "blogPostsRead"
	CodeRuns       StatName = "codeRuns"
	MessagesSent   StatName = "messagesSent"
	LoginCount     StatName = "loginCount"
)

// StatNames lists every counter in a stable order.
var StatNames = []StatName{ProjectsViewed, BlogPostsRead, CodeRuns, MessagesSent, LoginCount}

func ParseStatName(s string) (StatName, bool) {
	for _, name := range StatNames {
		if string(name) == s {
			return name, true
		}
	}
	return "", false
}

// Stats holds the monotonically growing activity counters of a user.
type Stats struct {
	ProjectsViewed int `json:"projectsViewed"`
	BlogPostsRead  int `json:"blogPostsRead"`
	CodeRuns       int `json:"codeRuns"`
	MessagesSent   int `json:"messagesSent"`
	LoginCount     int `json:"loginCount"`
}

func (s Stats) Get(name StatName) int {
	switch name {
	case ProjectsViewed:
		return s.ProjectsViewed
	case BlogPostsRead:
		return s.BlogPostsRead
	case CodeRuns:
		return s.CodeRuns
	case MessagesSent:
		return s.MessagesSent
	case LoginCount:
		return s.LoginCount
	}
	return 0
}

// Add increments a counter in place. It reports false for an unknown name.
func (s *Stats) Add(name StatName, amount int) bool {
	switch name {
	case ProjectsViewed:
		s.ProjectsViewed += amount
	case BlogPostsRead:
		s.BlogPostsRead += amount
	case CodeRuns:
		s.CodeRuns += amount
	case MessagesSent:
		s.MessagesSent += amount
	case LoginCount:
		s.LoginCount += amount
	default:
		return false
	}
	return true
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole accepts any casing ("Admin", "admin"); everything else is a regular user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Profile is the per-user record the achievement and activity code reads and writes.
type Profile struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Nickname      string    `json:"nickname"`
	DisplayName   string    `json:"displayName"`
	Role          Role      `json:"role"`
	Avatar        string    `json:"avatar,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	Achievements  []string  `json:"achievements"`
	Stats         Stats     `json:"stats"`
	Followers     int       `json:"followersCount"`
	ProfilesLiked int       `json:"profilesLiked"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (p *Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Update is a partial profile write. Nil fields are left untouched.
type Update struct {
	Email        *string  `json:"email,omitempty"`
	Role         *Role    `json:"role,omitempty"`
	Nickname     *string  `json:"nickname,omitempty"`
	Bio          *string  `json:"bio,omitempty"`
	Avatar       *string  `json:"avatar,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
	Stats        *Stats   `json:"stats,omitempty"`
}

// Apply copies the set fields of u onto p.
func (u Update) Apply(p *Profile) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.Nickname != nil {
		p.Nickname = *u.Nickname
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.Achievements != nil {
		p.Achievements = append([]string(nil), u.Achievements...)
	}
	if u.Stats != nil {
		p.Stats = *u.Stats
	}
}

// DefaultNickname derives a nickname from the local part of an email address.
func DefaultNickname(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
