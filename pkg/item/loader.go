package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/crimeboss/pkg/effects"
	"github.com/gravitas-games/crimeboss/pkg/models"
)

// catalogFile is the on-disk layout of an item catalog.
type catalogFile struct {
	Items []itemRecord `yaml:"items"`
}

type itemRecord struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Category    string        `yaml:"category"`
	Description string        `yaml:"description"`
	Kind        string        `yaml:"kind"`
	Slot        string        `yaml:"slot"`
	Value       int           `yaml:"value"`
	Effect      *effects.Spec `yaml:"effect"`
}

// LoadCatalog reads an item catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read item catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("item catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes YAML catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse item catalog: %w", err)
	}
	c := &Catalog{items: make(map[models.ItemID]Definition, len(file.Items))}
	for i, rec := range file.Items {
		def := Definition{
			ID:          models.ItemID(rec.ID),
			Name:        rec.Name,
			Category:    rec.Category,
			Description: rec.Description,
			Kind:        Kind(rec.Kind),
			Slot:        models.Slot(rec.Slot),
			BaseValue:   rec.Value,
		}
		if def.Kind == "" {
			def.Kind = KindMaterial
		}
		if rec.Effect != nil {
			eff, err := rec.Effect.Build()
			if err != nil {
				return nil, fmt.Errorf("item %d (%s): %w", i, rec.ID, err)
			}
			def.Effect = eff
		}
		if err := c.Register(def); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return c, nil
}
