package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NormalizePlanets decodes a planets payload that is either an object keyed
// by body name or an array of positions carrying a "name" field. Older
// stored charts used the array form.
func NormalizePlanets(raw json.RawMessage) (map[Body]PlanetPosition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[Body]PlanetPosition{}, nil
	}

	switch raw[0] {
	case '{':
		var byName map[string]PlanetPosition
		if err := json.Unmarshal(raw, &byName); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPlanetsShape, err)
		}
		out := make(map[Body]PlanetPosition, len(byName))
		for name, p := range byName {
			b, ok := ParseBody(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBody, name)
			}
			p.Body = b
			out[b] = p
		}
		return out, nil
	case '[':
		var list []PlanetPosition
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPlanetsShape, err)
		}
		out := make(map[Body]PlanetPosition, len(list))
		for _, p := range list {
			b, ok := ParseBody(string(p.Body))
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrInvalidBody, p.Body)
			}
			p.Body = b
			out[b] = p
		}
		return out, nil
	default:
		return nil, ErrPlanetsShape
	}
}

// UnmarshalJSON accepts both planets shapes.
func (c *ChartSnapshot) UnmarshalJSON(data []byte) error {
	type alias ChartSnapshot
	aux := struct {
		*alias
		Planets json.RawMessage `json:"planets"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	planets, err := NormalizePlanets(aux.Planets)
	if err != nil {
		return err
	}
	c.Planets = planets
	return nil
}
