// Package catalog loads realm, template and selector overrides from YAML.
package catalog

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/stillpath/journey/internal/journey"
)

// file is the on-disk layout. Sections left out keep the built-in values.
type file struct {
	Realms    []journey.Realm                             `yaml:"realms"`
	Templates map[journey.Pool][]journey.ActivityTemplate `yaml:"templates"`
	Policy    journey.Policy                              `yaml:"policy"`
	XP        journey.XPCurve                             `yaml:"xp"`
}

// Catalog is a validated set of engine inputs.
type Catalog struct {
	Realms   *journey.RealmCatalog
	Registry *journey.Registry
	Policy   journey.Policy
	Curve    journey.XPCurve
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Realms:   journey.DefaultRealmCatalog(),
		Registry: journey.DefaultRegistry(),
		Policy:   journey.DefaultPolicy(),
		Curve:    journey.DefaultXPCurve(),
	}
}

// Load reads and validates the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"path":      path,
		"realms":    len(c.Realms.All()),
		"max_level": c.Realms.MaxLevel(),
	}).Info("catalog loaded")
	return c, nil
}

// Parse decodes a catalog document. Policy and xp fields are merged over
// the defaults; realms and templates replace the built-in tables wholesale.
func Parse(data []byte) (*Catalog, error) {
	f := file{
		Policy: journey.DefaultPolicy(),
		XP:     journey.DefaultXPCurve(),
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c := Default()
	if len(f.Realms) > 0 {
		realms, err := journey.NewRealmCatalog(f.Realms)
		if err != nil {
			return nil, err
		}
		c.Realms = realms
	}
	if len(f.Templates) > 0 {
		reg, err := journey.NewRegistry(f.Templates)
		if err != nil {
			return nil, err
		}
		c.Registry = reg
	}
	if err := f.Policy.Validate(); err != nil {
		return nil, err
	}
	if err := f.XP.Validate(); err != nil {
		return nil, err
	}
	c.Policy = f.Policy
	c.Curve = f.XP

	// Surface empty challenge pools here rather than at engine start.
	if _, err := c.Engine(); err != nil {
		return nil, err
	}
	return c, nil
}

// Options returns the engine options that install the catalog.
func (c *Catalog) Options() []journey.Option {
	return []journey.Option{
		journey.WithRealms(c.Realms),
		journey.WithRegistry(c.Registry),
		journey.WithPolicy(c.Policy),
		journey.WithXPCurve(c.Curve),
	}
}

// Engine builds an engine over the catalog.
func (c *Catalog) Engine() (*journey.Engine, error) {
	return journey.New(c.Options()...)
}
