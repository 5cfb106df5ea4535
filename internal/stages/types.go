// Package stages implements the six pipeline transforms — White Balance,
// UDCP, Beer-Lambert, Color Rebalance, CLAHE, and Multi-Scale Fusion —
// behind one common Stage contract, plus the typed parameter records and
// declared bounds each stage exposes for UI generation and persistence.
package stages

import "fmt"

// StageID identifies one of the six fixed pipeline stages. The pipeline
// order is fixed by Order and is never reordered by configuration.
type StageID string

const (
	WhiteBalance     StageID = "white_balance"
	UDCP             StageID = "udcp"
	BeerLambert      StageID = "beer_lambert"
	ColorRebalance   StageID = "color_rebalance"
	CLAHE            StageID = "clahe"
	MultiscaleFusion StageID = "multiscale_fusion"
)

// Order is the non-negotiable execution order of the six stages.
var Order = []StageID{WhiteBalance, UDCP, BeerLambert, ColorRebalance, CLAHE, MultiscaleFusion}

// ParamKind discriminates the ParameterValue sum type.
type ParamKind int

const (
	KindFloat ParamKind = iota
	KindInt
	KindBool
	KindEnum
)

// ParameterValue is the single sum type used at the UI-binding boundary;
// stage internals work with typed Go values extracted from a Params map
// via the Get* helpers below.
type ParameterValue struct {
	Kind  ParamKind
	Float float64
	Int   int
	Bool  bool
	Enum  string
}

func Float(v float64) ParameterValue { return ParameterValue{Kind: KindFloat, Float: v} }
func Int(v int) ParameterValue       { return ParameterValue{Kind: KindInt, Int: v} }
func Bool(v bool) ParameterValue     { return ParameterValue{Kind: KindBool, Bool: v} }
func Enum(v string) ParameterValue   { return ParameterValue{Kind: KindEnum, Enum: v} }

// Bound declares the legal range (or, for enums, the allowed values) and
// default for one named parameter.
type Bound struct {
	Kind    ParamKind
	Min     float64
	Max     float64
	Default ParameterValue
	Allowed []string // for KindEnum
}

// Clamp fits value into bound's declared range, returning an error only
// when the value's Kind cannot be reconciled with the bound at all (spec
// InvalidParameter: "value cannot be clamped").
func (b Bound) Clamp(value ParameterValue) (ParameterValue, error) {
	switch b.Kind {
	case KindFloat:
		if value.Kind != KindFloat {
			return value, fmt.Errorf("expected float, got %v", value.Kind)
		}
		return Float(clamp(value.Float, b.Min, b.Max)), nil
	case KindInt:
		if value.Kind != KindInt {
			return value, fmt.Errorf("expected int, got %v", value.Kind)
		}
		v := clamp(float64(value.Int), b.Min, b.Max)
		return Int(int(v)), nil
	case KindBool:
		if value.Kind != KindBool {
			return value, fmt.Errorf("expected bool, got %v", value.Kind)
		}
		return value, nil
	case KindEnum:
		if value.Kind != KindEnum {
			return value, fmt.Errorf("expected enum, got %v", value.Kind)
		}
		for _, a := range b.Allowed {
			if a == value.Enum {
				return value, nil
			}
		}
		return value, fmt.Errorf("value %q not among allowed %v", value.Enum, b.Allowed)
	}
	return value, fmt.Errorf("unknown bound kind")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Params is a named bag of typed parameter values, keyed by the stage's
// declared parameter names. Declared bounds and a reflective map-of-values
// give UI generation somewhere to hook in without stage internals passing
// raw strings around.
type Params map[string]ParameterValue

// Clone returns a shallow copy (values are themselves immutable structs).
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ClampAll clamps every value present in p against bounds, leaving
// parameters absent from p untouched (callers should seed from
// DefaultParams first).
func ClampAll(p Params, bounds map[string]Bound) (Params, error) {
	out := p.Clone()
	for name, v := range p {
		b, ok := bounds[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
		clamped, err := b.Clamp(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = clamped
	}
	return out, nil
}

func (p Params) GetFloat(name string, def float64) float64 {
	if v, ok := p[name]; ok && v.Kind == KindFloat {
		return v.Float
	}
	return def
}

func (p Params) GetInt(name string, def int) int {
	if v, ok := p[name]; ok && v.Kind == KindInt {
		return v.Int
	}
	return def
}

func (p Params) GetBool(name string, def bool) bool {
	if v, ok := p[name]; ok && v.Kind == KindBool {
		return v.Bool
	}
	return def
}

func (p Params) GetEnum(name string, def string) string {
	if v, ok := p[name]; ok && v.Kind == KindEnum {
		return v.Enum
	}
	return def
}
