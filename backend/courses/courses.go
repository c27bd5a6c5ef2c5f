package courses

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

var ErrCourseNotFound = errors.New("course not found")

// Language identifies a course. One course exists per language.
type Language string

const (
	Python     Language = "python"
	JavaScript Language = "javascript"
	Java       Language = "java"
	Cpp        Language = "cpp"
	CSharp     Language = "csharp"
)

type Lesson struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Content     string `yaml:"content" json:"content,omitempty"`
	StarterCode string `yaml:"starter_code" json:"starterCode,omitempty"`
	Solution    string `yaml:"solution" json:"-"`
}

type Chapter struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Lessons     []Lesson `yaml:"lessons" json:"lessons"`
}

// LessonIndex returns the position of the lesson inside the chapter, or -1.
func (ch *Chapter) LessonIndex(lessonID string) int {
	for i := range ch.Lessons {
		if ch.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

type Course struct {
	Language    Language  `yaml:"language" json:"language"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Chapters    []Chapter `yaml:"chapters" json:"chapters"`
}

// ChapterIndex returns the position of the chapter inside the course, or -1.
func (c *Course) ChapterIndex(chapterID string) int {
	for i := range c.Chapters {
		if c.Chapters[i].ID == chapterID {
			return i
		}
	}
	return -1
}

// Chapter looks a chapter up by id.
func (c *Course) Chapter(chapterID string) (*Chapter, bool) {
	idx := c.ChapterIndex(chapterID)
	if idx < 0 {
		return nil, false
	}
	return &c.Chapters[idx], true
}

func (c *Course) TotalLessons() int {
	total := 0
	for _, ch := range c.Chapters {
		total += len(ch.Lessons)
	}
	return total
}

// Catalog is the read-only set of course definitions. It supplies the
// authoritative chapter and lesson counts used by progress tracking.
type Catalog struct {
	courses map[Language]*Course
	order   []Language
}

type catalogFile struct {
	Courses []Course `yaml:"courses"`
}

// LoadCatalog parses a YAML course catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse course catalog: %w", err)
	}
	return NewCatalog(file.Courses...)
}

// NewCatalog builds a catalog from course values, validating ids.
func NewCatalog(list ...Course) (*Catalog, error) {
	cat := &Catalog{courses: make(map[Language]*Course, len(list))}
	for i := range list {
		course := list[i]
		course.Language = Language(strings.ToLower(strings.TrimSpace(string(course.Language))))
		if course.Language == "" {
			return nil, fmt.Errorf("course %d: missing language", i)
		}
		if _, dup := cat.courses[course.Language]; dup {
			return nil, fmt.Errorf("course %s: defined twice", course.Language)
		}
		if err := validateCourse(&course); err != nil {
			return nil, err
		}
		cat.courses[course.Language] = &course
		cat.order = append(cat.order, course.Language)
	}
	return cat, nil
}

func validateCourse(c *Course) error {
	chapters := make(map[string]struct{}, len(c.Chapters))
	for _, ch := range c.Chapters {
		if ch.ID == "" {
			return fmt.Errorf("course %s: chapter without id", c.Language)
		}
		if _, dup := chapters[ch.ID]; dup {
			return fmt.Errorf("course %s: duplicate chapter %q", c.Language, ch.ID)
		}
		chapters[ch.ID] = struct{}{}

		lessons := make(map[string]struct{}, len(ch.Lessons))
		for _, l := range ch.Lessons {
			if l.ID == "" {
				return fmt.Errorf("course %s, chapter %s: lesson without id", c.Language, ch.ID)
			}
			if _, dup := lessons[l.ID]; dup {
				return fmt.Errorf("course %s, chapter %s: duplicate lesson %q", c.Language, ch.ID, l.ID)
			}
			lessons[l.ID] = struct{}{}
		}
	}
	return nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	cat, err := LoadCatalog(defaultContent)
	if err != nil {
		panic(err)
	}
	return cat
}

// GetCourse returns the course for a language.
func (c *Catalog) GetCourse(language Language) (*Course, error) {
	course, ok := c.courses[Language(strings.ToLower(string(language)))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, language)
	}
	return course, nil
}

// AllCourses returns courses in catalog order.
func (c *Catalog) AllCourses() []*Course {
	out := make([]*Course, 0, len(c.order))
	for _, lang := range c.order {
		out = append(out, c.courses[lang])
	}
	return out
}
