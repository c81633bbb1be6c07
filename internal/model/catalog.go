package model

// Capabilities is the catalog of servable asset/unit/variant combinations.
type Capabilities struct {
	Assets []AssetCapability `json:"assets" yaml:"assets"`
}

// AssetCapability lists the units an asset can be priced in.
type AssetCapability struct {
	ID    string           `json:"id" yaml:"id"`
	Label string           `json:"label" yaml:"label"`
	Units []UnitCapability `json:"units" yaml:"units"`
}

// UnitCapability is a pricing unit, optionally split into variants.
type UnitCapability struct {
	ID               string        `json:"id" yaml:"id"`
	Label            string        `json:"label" yaml:"label"`
	Endpoint         string        `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Variants         []UnitVariant `json:"variants,omitempty" yaml:"variants,omitempty"`
	DefaultVariantID string        `json:"default_variant_id,omitempty" yaml:"default_variant_id,omitempty"`
}

// UnitVariant is a unit-of-measure choice with its own endpoint.
type UnitVariant struct {
	ID         string `json:"id" yaml:"id"`
	Label      string `json:"label" yaml:"label"`
	ChartLabel string `json:"chart_label,omitempty" yaml:"chart_label,omitempty"`
	Endpoint   string `json:"endpoint" yaml:"endpoint"`
}

// Asset finds an asset by id.
func (c *Capabilities) Asset(id string) (*AssetCapability, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Assets {
		if c.Assets[i].ID == id {
			return &c.Assets[i], true
		}
	}
	return nil, false
}

// Unit finds a unit of the asset by id.
func (a *AssetCapability) Unit(id string) (*UnitCapability, bool) {
	for i := range a.Units {
		if a.Units[i].ID == id {
			return &a.Units[i], true
		}
	}
	return nil, false
}

// Variant finds a variant by id.
func (u *UnitCapability) Variant(id string) (*UnitVariant, bool) {
	for i := range u.Variants {
		if u.Variants[i].ID == id {
			return &u.Variants[i], true
		}
	}
	return nil, false
}
