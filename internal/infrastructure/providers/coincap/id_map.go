package coincap

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed id_map.yaml
var defaultIDMap []byte

// IDMap traduce ids canónicos a ids de CoinCap y viceversa. Es inmutable tras construirse.
type IDMap struct {
	toSecondary map[string]string
	toCanonical map[string]string
}

// DefaultIDMap carga la tabla embebida
func DefaultIDMap() *IDMap {
	m, err := ParseIDMap(defaultIDMap)
	if err != nil {
		panic(fmt.Sprintf("coincap: embedded id map is invalid: %v", err))
	}
	return m
}

// ParseIDMap construye el mapa desde un documento YAML canonical: secondary
func ParseIDMap(data []byte) (*IDMap, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse id map: %w", err)
	}

	m := &IDMap{
		toSecondary: make(map[string]string, len(raw)),
		toCanonical: make(map[string]string, len(raw)),
	}
	for canonical, secondary := range raw {
		canonical = strings.TrimSpace(canonical)
		secondary = strings.TrimSpace(secondary)
		if canonical == "" || secondary == "" {
			return nil, fmt.Errorf("id map entry %q -> %q is empty", canonical, secondary)
		}
		if prev, dup := m.toCanonical[secondary]; dup {
			return nil, fmt.Errorf("secondary id %q mapped from both %q and %q", secondary, prev, canonical)
		}
		m.toSecondary[canonical] = secondary
		m.toCanonical[secondary] = canonical
	}
	return m, nil
}

// ToSecondary devuelve el id de CoinCap, o el mismo id si no hay entrada
func (m *IDMap) ToSecondary(canonical string) string {
	if id, ok := m.toSecondary[canonical]; ok {
		return id
	}
	return canonical
}

// ToCanonical es la traducción inversa, también con identidad por defecto
func (m *IDMap) ToCanonical(secondary string) string {
	if id, ok := m.toCanonical[secondary]; ok {
		return id
	}
	return secondary
}

func (m *IDMap) Len() int {
	return len(m.toSecondary)
}
