package column

import "fmt"

// WidenNumeric resolves mixed physical Go numeric representations within a
// single column (int32 vs int64 vs float64, as two batches ingested under
// the same bucket key may carry different source column types) to the
// widest type actually present: int32 < int64 < float64. Non-numeric values
// mixed with numeric ones are a hard error — the bucket's object type
// already fixed the RDF datatype, so a physical mismatch here means the
// caller handed down incompatible batches for the same bucket.
func WidenNumeric(col *Column) (*Column, error) {
	widest := 0 // 0=none, 1=int32, 2=int64, 3=float64
	var other any // first non-numeric value seen
	for _, v := range col.Values {
		switch v.(type) {
		case nil:
			continue
		case int32:
			if widest < 1 {
				widest = 1
			}
		case int, int64:
			if widest < 2 {
				widest = 2
			}
		case float32, float64:
			widest = 3
		default:
			if other == nil {
				other = v
			}
		}
	}
	if other != nil {
		if widest > 0 {
			return nil, fmt.Errorf("widen: column %q mixes numeric and non-numeric values (%T)", col.Name, other)
		}
		return col, nil // not a numeric column; leave untouched
	}
	if widest <= 1 {
		return col, nil
	}

	out := make([]any, len(col.Values))
	for i, v := range col.Values {
		switch t := v.(type) {
		case nil:
			out[i] = nil
		case int32:
			out[i] = widenTo(int64(t), widest)
		case int:
			out[i] = widenTo(int64(t), widest)
		case int64:
			out[i] = widenTo(t, widest)
		case float32:
			out[i] = float64(t)
		case float64:
			out[i] = t
		default:
			return nil, fmt.Errorf("widen: column %q mixes numeric and non-numeric values (%T)", col.Name, v)
		}
	}
	return &Column{Name: col.Name, Type: col.Type, Values: out}, nil
}

func widenTo(v int64, widest int) any {
	if widest == 3 {
		return float64(v)
	}
	return v
}
