package review

import "github.com/tailored-agentic-units/flowgraph/state"

// numeric is an int or float context number. Arithmetic stays integral until
// a float operand is involved.
type numeric struct {
	i       int64
	f       float64
	isFloat bool
}

// number reads key as a number; missing and non-numeric values read as 0.
func number(c state.Context, key string) numeric {
	v, _ := c.Get(key)
	if i, ok := v.AsInt(); ok {
		return numeric{i: i}
	}
	if f, ok := v.AsFloat(); ok {
		return numeric{f: f, isFloat: true}
	}
	return numeric{}
}

func (n numeric) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n numeric) add(o numeric) numeric {
	if n.isFloat || o.isFloat {
		return numeric{f: n.float() + o.float(), isFloat: true}
	}
	return numeric{i: n.i + o.i}
}

func (n numeric) sub(o numeric) numeric {
	if o.isFloat {
		return n.add(numeric{f: -o.f, isFloat: true})
	}
	return n.add(numeric{i: -o.i})
}

func (n numeric) atLeastZero() numeric {
	if n.float() < 0 {
		return numeric{isFloat: n.isFloat}
	}
	return n
}

func (n numeric) value() state.Value {
	if n.isFloat {
		return state.Float(n.f)
	}
	return state.Int(n.i)
}

func scale(n numeric, factor int64) numeric {
	if n.isFloat {
		return numeric{f: n.f * float64(factor), isFloat: true}
	}
	return numeric{i: n.i * factor}
}
