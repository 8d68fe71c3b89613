package stimulus

import (
	"encoding/json"

	"go.uber.org/zap/zapcore"

	"gabornoise/internal/params"
)

// Value is one announced parameter.
type Value struct {
	Name  string
	Kind  params.Kind
	Int   int
	Float float64
}

// Interface returns the value with its announced type.
func (v Value) Interface() any {
	if v.Kind == params.KindInt {
		return v.Int
	}
	return v.Float
}

// Announcement is the snapshot logged for experiment replay.
type Announcement struct {
	Type   string
	LoadID string
	Seed   uint32
	Time   float64 // seconds since play, -1 when not playing
	Values []Value
}

// Get returns the typed value of name.
func (a Announcement) Get(name string) (any, bool) {
	for _, v := range a.Values {
		if v.Name == name {
			return v.Interface(), true
		}
	}
	return nil, false
}

func (a Announcement) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("type", a.Type)
	if a.LoadID != "" {
		enc.AddString("load_id", a.LoadID)
		enc.AddUint32("seed", a.Seed)
	}
	enc.AddFloat64("time", a.Time)
	for _, v := range a.Values {
		if v.Kind == params.KindInt {
			enc.AddInt(v.Name, v.Int)
		} else {
			enc.AddFloat64(v.Name, v.Float)
		}
	}
	return nil
}

func (a Announcement) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(a.Values)+4)
	m["type"] = a.Type
	if a.LoadID != "" {
		m["load_id"] = a.LoadID
		m["seed"] = a.Seed
	}
	m["time"] = a.Time
	for _, v := range a.Values {
		m[v.Name] = v.Interface()
	}
	return json.Marshal(m)
}
