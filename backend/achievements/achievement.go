package achievements

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

type Category string

const (
	CategoryActivity  Category = "activity"
	CategoryMilestone Category = "milestone"
	CategorySpecial   Category = "special"
	CategoryCourse    Category = "course"
)

// Action is a discrete user event that can unlock an achievement on its own.
type Action string

const (
	ActionNone           Action = ""
	ActionLogin          Action = "login"
	ActionCompleteLesson Action = "complete_lesson"
	ActionUpdateProfile  Action = "update_profile"
	ActionFollowUser     Action = "follow_user"
	ActionAddBio         Action = "add_bio"
	ActionUploadAvatar   Action = "upload_avatar"
)

var knownActions = []Action{
	ActionLogin, ActionCompleteLesson, ActionUpdateProfile,
	ActionFollowUser, ActionAddBio, ActionUploadAvatar,
}

func ParseAction(s string) (Action, bool) {
	for _, a := range knownActions {
		if string(a) == s {
			return a, true
		}
	}
	return ActionNone, false
}

// Requirement is the unlock condition of an achievement. The set of
// implementations is closed: StatRequirement, ActionRequirement,
// CourseRequirement and CustomRequirement.
type Requirement interface {
	requirement()
}

// StatRequirement holds once the named counter reaches Threshold.
type StatRequirement struct {
	Stat      profile.StatName
	Threshold int
}

// ActionRequirement holds when the triggering action equals Action.
type ActionRequirement struct {
	Action Action
}

// CourseRequirement holds when the chapter of the course is completed.
type CourseRequirement struct {
	Language  string
	ChapterID string
}

// CustomRequirement depends on facts outside the profile counters.
type CustomRequirement struct {
	Predicate Predicate
}

func (StatRequirement) requirement()   {}
func (ActionRequirement) requirement() {}
func (CourseRequirement) requirement() {}
func (CustomRequirement) requirement() {}

// Facts are the social and course numbers custom predicates look at.
type Facts struct {
	Followers        int
	ProfilesLiked    int
	CoursesCompleted int
	RegisteredAt     time.Time
}

// Predicate is one of a fixed set of named checks over Facts.
type Predicate interface {
	Name() string
	Holds(f Facts) bool
	predicate()
}

type FollowerCountAtLeast int

func (p FollowerCountAtLeast) Name() string       { return fmt.Sprintf("followers>=%d", int(p)) }
func (p FollowerCountAtLeast) Holds(f Facts) bool { return f.Followers >= int(p) }
func (FollowerCountAtLeast) predicate()           {}

type CoursesCompletedAtLeast int

func (p CoursesCompletedAtLeast) Name() string       { return fmt.Sprintf("courses_completed>=%d", int(p)) }
func (p CoursesCompletedAtLeast) Holds(f Facts) bool { return f.CoursesCompleted >= int(p) }
func (CoursesCompletedAtLeast) predicate()           {}

type ProfilesLikedAtLeast int

func (p ProfilesLikedAtLeast) Name() string       { return fmt.Sprintf("profiles_liked>=%d", int(p)) }
func (p ProfilesLikedAtLeast) Holds(f Facts) bool { return f.ProfilesLiked >= int(p) }
func (ProfilesLikedAtLeast) predicate()           {}

// RegisteredBefore holds for accounts created strictly before Cutoff.
// An unknown registration time never qualifies.
type RegisteredBefore struct {
	Cutoff time.Time
}

func (p RegisteredBefore) Name() string { return "registered_before:" + p.Cutoff.Format(time.DateOnly) }
func (p RegisteredBefore) Holds(f Facts) bool {
	return !f.RegisteredAt.IsZero() && f.RegisteredAt.Before(p.Cutoff)
}
func (RegisteredBefore) predicate() {}

type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Category    Category
	Requirement Requirement
}

type requirementJSON struct {
	Type           string `json:"type"`
	StatName       string `json:"statName,omitempty"`
	Value          int    `json:"value,omitempty"`
	Action         string `json:"action,omitempty"`
	CourseLanguage string `json:"courseLanguage,omitempty"`
	ChapterID      string `json:"chapterId,omitempty"`
	Predicate      string `json:"predicate,omitempty"`
}

func (a Achievement) MarshalJSON() ([]byte, error) {
	var req requirementJSON
	switch r := a.Requirement.(type) {
	case StatRequirement:
		req = requirementJSON{Type: "stat", StatName: string(r.Stat), Value: r.Threshold}
	case ActionRequirement:
		req = requirementJSON{Type: "action", Action: string(r.Action)}
	case CourseRequirement:
		req = requirementJSON{Type: "course", CourseLanguage: r.Language, ChapterID: r.ChapterID}
	case CustomRequirement:
		req = requirementJSON{Type: "custom", Predicate: r.Predicate.Name()}
	default:
		return nil, fmt.Errorf("achievement %s: unsupported requirement %T", a.ID, a.Requirement)
	}

	return json.Marshal(struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Icon        string          `json:"icon"`
		Category    Category        `json:"category"`
		Requirement requirementJSON `json:"requirement"`
	}{a.ID, a.Name, a.Description, a.Icon, a.Category, req})
}
