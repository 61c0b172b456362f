package recommend

import (
	"bytes"
	"fmt"
	"os"

	"github.com/benvon/mindful-harmony/internal/models"
	"github.com/benvon/mindful-harmony/internal/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog is an ordered, read-only list of activities. Order is the
// tie-break for equal scores.
type Catalog struct {
	activities []models.Activity
	byID       map[string]int
}

// NewCatalog copies activities into a Catalog. Mood targets are
// normalized the same way request moods are.
func NewCatalog(activities []models.Activity) *Catalog {
	c := &Catalog{
		activities: make([]models.Activity, len(activities)),
		byID:       make(map[string]int, len(activities)),
	}
	for i, a := range activities {
		targets := make([]string, len(a.MoodTargets))
		for j, m := range a.MoodTargets {
			targets[j] = models.NormalizeMood(m)
		}
		a.MoodTargets = targets
		a.Context = append([]string(nil), a.Context...)
		c.activities[i] = a
		if _, dup := c.byID[a.ID]; !dup {
			c.byID[a.ID] = i
		}
	}
	return c
}

// EmptyCatalog returns a Catalog with no entries.
func EmptyCatalog() *Catalog { return NewCatalog(nil) }

// Len returns the number of activities. A nil Catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.activities)
}

// Activities returns the entries in catalog order. Callers must not
// modify the returned slice.
func (c *Catalog) Activities() []models.Activity {
	if c == nil {
		return nil
	}
	return c.activities
}

// Get returns the first activity with id.
func (c *Catalog) Get(id string) (models.Activity, bool) {
	if c == nil {
		return models.Activity{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Activity{}, false
	}
	return c.activities[i], true
}

// Problems lists validation failures and duplicate ids. Problems do not
// prevent scoring; mismatching values simply never match.
func (c *Catalog) Problems() []error {
	var problems []error
	seen := make(map[string]bool, c.Len())
	for i, a := range c.Activities() {
		if err := validation.Validate.Struct(a); err != nil {
			problems = append(problems, fmt.Errorf("activity %d (%q): %s", i, a.ID, validation.FirstError(err)))
		}
		if seen[a.ID] {
			problems = append(problems, fmt.Errorf("activity %d: duplicate id %q", i, a.ID))
		}
		seen[a.ID] = true
	}
	return problems
}

// ParseCatalog decodes a YAML (or JSON) list of activities.
func ParseCatalog(data []byte) (*Catalog, error) {
	var activities []models.Activity
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&activities); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return NewCatalog(activities), nil
}

// LoadCatalog reads and parses the catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// LoadCatalogOrEmpty loads the catalog at path. A load failure is logged
// and yields an empty catalog.
func LoadCatalogOrEmpty(path string, logger *zap.Logger) *Catalog {
	c, err := LoadCatalog(path)
	if err != nil {
		logger.Error("activity_catalog_load_failed", zap.String("path", path), zap.Error(err))
		return EmptyCatalog()
	}
	for _, p := range c.Problems() {
		logger.Warn("activity_catalog_problem", zap.String("path", path), zap.Error(p))
	}
	logger.Info("activity_catalog_loaded", zap.String("path", path), zap.Int("activities", c.Len()))
	return c
}
