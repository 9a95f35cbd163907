// Package formats provides level file format parsers.
package formats

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLRect is a wall rectangle in logical units.
type YAMLRect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// YAMLPoint is a start coordinate.
type YAMLPoint struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// YAMLEnd is an end coordinate with the marker rotation in degrees.
type YAMLEnd struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
}

// YAMLLevel represents one level record. Field names match the bundled
// levels.json layout so that file can be loaded unchanged.
type YAMLLevel struct {
	ID              string     `yaml:"id"`
	Name            string     `yaml:"name"`
	Walls           []YAMLRect `yaml:"walls"`
	StartCoords     YAMLPoint  `yaml:"startCoords"`
	EndCoords       YAMLEnd    `yaml:"endCoords"`
	BackgroundImage string     `yaml:"backgroundImage"`
	Speed           float64    `yaml:"speed"`
}

// YAMLLevelList is a bundle file holding an ordered list of levels.
type YAMLLevelList struct {
	Levels []YAMLLevel `yaml:"levels"`
}

// ParseYAML parses a level file. It accepts a bundle (`levels: [...]`),
// a bare top-level sequence (the JSON array form), or a single level mapping.
func ParseYAML(data []byte) ([]YAMLLevel, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("yaml unmarshal: empty document")
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var list []YAMLLevel
		if err := doc.Decode(&list); err != nil {
			return nil, fmt.Errorf("yaml decode level list: %w", err)
		}
		return list, nil

	case yaml.MappingNode:
		if hasKey(doc, "levels") {
			var bundle YAMLLevelList
			if err := doc.Decode(&bundle); err != nil {
				return nil, fmt.Errorf("yaml decode level bundle: %w", err)
			}
			return bundle.Levels, nil
		}
		var single YAMLLevel
		if err := doc.Decode(&single); err != nil {
			return nil, fmt.Errorf("yaml decode level: %w", err)
		}
		return []YAMLLevel{single}, nil
	}

	return nil, fmt.Errorf("yaml unmarshal: unexpected document kind %d", doc.Kind)
}

// EncodeYAML writes levels back out as a bundle file.
func EncodeYAML(levels []YAMLLevel) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(YAMLLevelList{Levels: levels}); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return buf.Bytes(), nil
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// FormatExtensions returns supported file extensions.
// JSON is a subset of YAML, so the same parser handles both.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}
