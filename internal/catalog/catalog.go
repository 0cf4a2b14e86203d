// Package catalog holds the fixed reference data used by the assessment and
// session engines: interview questions, therapy activities and disorder profiles.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/solace/internal/models"
)

//go:embed catalog.yaml
var defaultData []byte

type Catalog struct {
	Questions  []models.Question        `yaml:"questions"`
	Activities []models.Activity        `yaml:"activities"`
	Disorders  []models.DisorderProfile `yaml:"disorders"`

	activityIndex map[string]int
	disorderIndex map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultData)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a deployment catalog from a YAML file. An empty path returns the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.buildIndex()
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Questions) == 0 {
		return fmt.Errorf("catalog must define at least one question")
	}
	seen := make(map[string]bool)
	for i, q := range c.Questions {
		if q.ID == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if len(q.Options) == 0 {
			return fmt.Errorf("question %q has no options", q.ID)
		}
	}

	seen = make(map[string]bool)
	for i, a := range c.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity %d has no id", i)
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		seen[a.ID] = true
		if a.DurationMinutes <= 0 {
			return fmt.Errorf("activity %q must have a positive duration", a.ID)
		}
	}

	seen = make(map[string]bool)
	for _, d := range c.Disorders {
		if seen[d.Key] {
			return fmt.Errorf("duplicate disorder key %q", d.Key)
		}
		seen[d.Key] = true
	}
	return nil
}

func (c *Catalog) buildIndex() {
	c.activityIndex = make(map[string]int, len(c.Activities))
	for i, a := range c.Activities {
		c.activityIndex[a.ID] = i
	}
	c.disorderIndex = make(map[string]int, len(c.Disorders))
	for i, d := range c.Disorders {
		c.disorderIndex[d.Key] = i
	}
}

// Activity looks up an activity by id
func (c *Catalog) Activity(id string) (models.Activity, bool) {
	i, ok := c.activityIndex[id]
	if !ok {
		return models.Activity{}, false
	}
	return c.Activities[i], true
}

// Disorder looks up a disorder profile by key
func (c *Catalog) Disorder(key string) (models.DisorderProfile, bool) {
	i, ok := c.disorderIndex[key]
	if !ok {
		return models.DisorderProfile{}, false
	}
	return c.Disorders[i], true
}
