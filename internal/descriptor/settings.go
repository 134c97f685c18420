package descriptor

import "strconv"

// Float extracts a float64 setting by key, tolerating both numeric and
// string JSON representations (spec.md §3 "tolerating string or
// numeric representations"). ok is false if the key is absent or
// can't be coerced to a float.
func (d *Descriptor) Float(key string) (float64, bool) {
	v, ok := d.Settings[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
