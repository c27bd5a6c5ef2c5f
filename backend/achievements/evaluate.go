package achievements

import (
	"fmt"
	"strings"

	"github.com/Koloda55SA/RaDev-sub001/backend/profile"
)

// CheckAchievements returns the ids of every catalog entry whose stat or
// action requirement is met by stats and action, in catalog order. Course and
// custom requirements are not evaluated here. The result does not depend on
// which achievements the user already holds.
func CheckAchievements(c *Catalog, stats profile.Stats, action Action) []string {
	var ids []string
	for _, a := range c.list {
		switch req := a.Requirement.(type) {
		case StatRequirement:
			if stats.Get(req.Stat) >= req.Threshold {
				ids = append(ids, a.ID)
			}
		case ActionRequirement:
			if action != ActionNone && action == req.Action {
				ids = append(ids, a.ID)
			}
		case CourseRequirement, CustomRequirement:
		default:
			panic(fmt.Sprintf("achievements: unhandled requirement %T", req))
		}
	}
	return ids
}

// CheckCustom returns the ids of custom-requirement entries whose predicate
// holds for facts, in catalog order.
func CheckCustom(c *Catalog, facts Facts) []string {
	var ids []string
	for _, a := range c.list {
		if req, ok := a.Requirement.(CustomRequirement); ok && req.Predicate.Holds(facts) {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

const chapterPrefix = "chapter_complete_"

var languageIcons = map[string]string{
	"python":     "🐍",
	"java":       "☕",
	"javascript": "📜",
	"cpp":        "⚡",
	"csharp":     "🔷",
}

func ChapterAchievementID(language, chapterID string) string {
	return chapterPrefix + language + "_" + chapterID
}

// ParseChapterAchievementID splits a chapter achievement id. Languages never
// contain an underscore, so the first one after the prefix is the separator.
func ParseChapterAchievementID(id string) (language, chapterID string, ok bool) {
	rest, found := strings.CutPrefix(id, chapterPrefix)
	if !found {
		return "", "", false
	}
	language, chapterID, ok = strings.Cut(rest, "_")
	if !ok || language == "" || chapterID == "" {
		return "", "", false
	}
	return language, chapterID, true
}

// ChapterAchievement builds the achievement awarded for finishing a chapter.
// These are derived on demand and never stored in a Catalog.
func ChapterAchievement(language, chapterID, chapterTitle string) Achievement {
	icon, ok := languageIcons[language]
	if !ok {
		icon = "🏆"
	}
	return Achievement{
		ID:          ChapterAchievementID(language, chapterID),
		Name:        "Глава: " + chapterTitle,
		Description: fmt.Sprintf("Завершите главу %q в курсе %s", chapterTitle, language),
		Icon:        icon,
		Category:    CategoryCourse,
		Requirement: CourseRequirement{Language: language, ChapterID: chapterID},
	}
}
