package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"MeasureInGoods/internal/model"
)

// ErrMalformedPayload is returned when a body is not a recognizable series.
var ErrMalformedPayload = errors.New("malformed series payload")

type payloadMeta struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	Name             string `json:"name"`
	Unit             string `json:"unit"`
	Units            string `json:"units"`
	DenominatorUnits string `json:"denominator_units"`
}

// ParseSeries decodes a series response. Accepted shapes:
//
//	{"meta": {...}, "data": [...]}
//	{"meta": {...}, "data": {"points": [...]}}
//	{"name": "...", "points": [...]}
//	[...]
//	{"meta": {...}, "numerator": <series>, "denominator": <series>}
//
// The last form carries the two legs of a ratio, each in any of the other
// shapes; Points stays empty. fallbackName names the series when the
// payload carries no label.
func ParseSeries(body []byte, fallbackName string) (*model.Series, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return seriesFrom(root, fallbackName)
}

func seriesFrom(root any, fallbackName string) (*model.Series, error) {
	s := &model.Series{Name: fallbackName}
	switch r := root.(type) {
	case []any:
		s.Points = Normalize(r)
		return s, nil
	case map[string]any:
		applyMeta(s, r)
		if num, den, ok := legs(r); ok {
			var err error
			if s.Numerator, err = seriesFrom(num, "numerator"); err != nil {
				return nil, fmt.Errorf("numerator: %w", err)
			}
			if s.Denominator, err = seriesFrom(den, "denominator"); err != nil {
				return nil, fmt.Errorf("denominator: %w", err)
			}
			return s, nil
		}
		raw, err := rawPoints(r)
		if err != nil {
			return nil, err
		}
		s.Points = Normalize(raw)
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unexpected %T at top level", ErrMalformedPayload, root)
	}
}

func legs(r map[string]any) (num, den any, ok bool) {
	num, nok := r["numerator"]
	den, dok := r["denominator"]
	return num, den, nok && dok
}

func rawPoints(r map[string]any) ([]any, error) {
	if data, ok := r["data"]; ok {
		switch d := data.(type) {
		case []any:
			return d, nil
		case map[string]any:
			if pts, ok := d["points"].([]any); ok {
				return pts, nil
			}
			return nil, fmt.Errorf("%w: data object without points", ErrMalformedPayload)
		}
		return nil, fmt.Errorf("%w: unexpected data %T", ErrMalformedPayload, data)
	}
	if pts, ok := r["points"].([]any); ok {
		return pts, nil
	}
	if obs, ok := r["observations"].([]any); ok {
		return obs, nil
	}
	return nil, fmt.Errorf("%w: no data or points", ErrMalformedPayload)
}

func applyMeta(s *model.Series, r map[string]any) {
	if name, ok := r["name"].(string); ok && name != "" {
		s.ID = name
		s.Name = name
	}
	metaRaw, ok := r["meta"]
	if !ok {
		return
	}
	// Re-marshal the already decoded object into the typed meta.
	b, err := json.Marshal(metaRaw)
	if err != nil {
		return
	}
	var m payloadMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return
	}
	if m.ID != "" {
		s.ID = m.ID
	}
	switch {
	case m.Label != "":
		s.Name = m.Label
	case m.Name != "":
		s.Name = m.Name
	}
	switch {
	case m.DenominatorUnits != "":
		s.Unit = m.DenominatorUnits
	case m.Units != "":
		s.Unit = m.Units
	case m.Unit != "":
		s.Unit = m.Unit
	}
}
