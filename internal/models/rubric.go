package models

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

// RatingLevel is the qualitative bucket a rater assigns to one rubric item.
type RatingLevel string

const (
	LevelGood    RatingLevel = "GOOD"
	LevelAverage RatingLevel = "AVERAGE"
	LevelWeak    RatingLevel = "WEAK"
)

// Levels returns the rating levels in display order.
func Levels() []RatingLevel {
	return []RatingLevel{LevelGood, LevelAverage, LevelWeak}
}

func (l RatingLevel) Valid() bool {
	switch l {
	case LevelGood, LevelAverage, LevelWeak:
		return true
	}
	return false
}

// ParseRatingLevel accepts the level name in any case.
func ParseRatingLevel(s string) (RatingLevel, error) {
	l := RatingLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// ReportLabel is the short upper-case label printed in the report table.
func (l RatingLevel) ReportLabel() string {
	switch l {
	case LevelGood:
		return "TỐT"
	case LevelAverage:
		return "KHÁ"
	case LevelWeak:
		return "YẾU"
	}
	return "-"
}

// Tone is the CSS token used to colour a level.
func (l RatingLevel) Tone() string {
	switch l {
	case LevelGood:
		return "good"
	case LevelAverage:
		return "average"
	case LevelWeak:
		return "weak"
	}
	return "none"
}

// Criterion describes what a rating level means for one item and how much of the
// item's points it is worth.
type Criterion struct {
	Label        string  `yaml:"label"`
	Description  string  `yaml:"description"`
	ScorePercent float64 `yaml:"score_percent"`
}

// Item is a single evaluable KPI line.
type Item struct {
	ID        string                    `yaml:"id"`
	Code      string                    `yaml:"code"`
	Name      string                    `yaml:"name"`
	MaxPoints float64                   `yaml:"max_points"`
	Unit      string                    `yaml:"unit"`
	Checklist []string                  `yaml:"checklist"`
	Criteria  map[RatingLevel]Criterion `yaml:"criteria"`
}

// Score is the points awarded for level, rounded to two decimals.
func (it Item) Score(level RatingLevel) float64 {
	return Round2(it.MaxPoints * it.Criteria[level].ScorePercent)
}

// Target is the description of the best achievable level.
func (it Item) Target() string {
	return it.Criteria[LevelGood].Description
}

// Category groups items under one heading.
type Category struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Items []Item `yaml:"items"`
}

func (c Category) MaxPoints() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.MaxPoints
	}
	return total
}

// ShortName strips the "<n>. " prefix and sentence-cases the rest,
// e.g. "1. VẬN HÀNH" becomes "Vận hành".
func (c Category) ShortName() string {
	name := c.Name
	if i := strings.Index(name, ". "); i >= 0 {
		name = name[i+2:]
	}
	runes := []rune(strings.ToLower(strings.TrimSpace(name)))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// Ordinal is the trailing number of the category id ("cat_3" -> "3").
func (c Category) Ordinal() string {
	if i := strings.LastIndex(c.ID, "_"); i >= 0 {
		return c.ID[i+1:]
	}
	return c.ID
}

// Rubric is the immutable catalog shared by every session.
type Rubric struct {
	Categories []Category `yaml:"categories"`

	index map[string]Item
}

// Item looks up an item by id.
func (r *Rubric) Item(id string) (Item, bool) {
	it, ok := r.index[id]
	return it, ok
}

func (r *Rubric) MaxPoints() float64 {
	var total float64
	for _, c := range r.Categories {
		total += c.MaxPoints()
	}
	return total
}

// ItemCount returns the number of items across all categories.
func (r *Rubric) ItemCount() int {
	return len(r.index)
}

//go:embed rubric.yaml
var defaultRubricYAML []byte

var (
	defaultRubric     *Rubric
	defaultRubricOnce sync.Once
)

// DefaultRubric returns the built-in boiler supervisor rubric.
func DefaultRubric() *Rubric {
	defaultRubricOnce.Do(func() {
		r, err := ParseRubric(defaultRubricYAML)
		if err != nil {
			panic("embedded rubric is invalid: " + err.Error())
		}
		defaultRubric = r
	})
	return defaultRubric
}

// LoadRubric reads and validates a rubric YAML file.
func LoadRubric(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}
	return ParseRubric(data)
}

// NewRubric builds a validated rubric from categories.
func NewRubric(categories []Category) (*Rubric, error) {
	r := &Rubric{Categories: categories}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ParseRubric decodes and validates rubric YAML.
func ParseRubric(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rubric YAML: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rubric) validate() error {
	r.index = make(map[string]Item)
	for _, c := range r.Categories {
		if c.ID == "" {
			return fmt.Errorf("%w: category %q has no id", ErrInvalidRubric, c.Name)
		}
		for _, it := range c.Items {
			if it.ID == "" {
				return fmt.Errorf("%w: item %q in %s has no id", ErrInvalidRubric, it.Name, c.ID)
			}
			if _, dup := r.index[it.ID]; dup {
				return fmt.Errorf("%w: duplicate item id %q", ErrInvalidRubric, it.ID)
			}
			if it.MaxPoints <= 0 {
				return fmt.Errorf("%w: item %s: max_points must be positive", ErrInvalidRubric, it.ID)
			}
			for _, l := range Levels() {
				cr, ok := it.Criteria[l]
				if !ok {
					return fmt.Errorf("%w: item %s: missing %s criterion", ErrInvalidRubric, it.ID, l)
				}
				if cr.ScorePercent < 0 || cr.ScorePercent > 1 {
					return fmt.Errorf("%w: item %s: %s score_percent %v outside [0,1]", ErrInvalidRubric, it.ID, l, cr.ScorePercent)
				}
			}
			r.index[it.ID] = it
		}
	}
	return nil
}
