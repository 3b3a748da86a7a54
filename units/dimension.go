package units

import (
	"sort"
	"strconv"
	"strings"
)

// Dimensionality is an exponent vector over base dimensions, e.g.
// {"mass": 1, "methane": 1, "time": -1} for "Mt CH4 / yr". Entries with a
// zero exponent are never stored.
type Dimensionality map[string]int

// Equal reports whether d and other describe the same dimensions.
func (d Dimensionality) Equal(other Dimensionality) bool {
	if len(d) != len(other) {
		return false
	}
	for name, exp := range d {
		if other[name] != exp {
			return false
		}
	}
	return true
}

// Key returns a canonical form usable as a map key. Dimensionless values
// yield "1".
func (d Dimensionality) Key() string {
	if len(d) == 0 {
		return "1"
	}
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('*')
		}
		b.WriteString(name)
		b.WriteByte('^')
		b.WriteString(strconv.Itoa(d[name]))
	}
	return b.String()
}

// String renders the dimensionality in bracketed form, e.g.
// "[mass] * [methane] / [time]".
func (d Dimensionality) String() string {
	if len(d) == 0 {
		return "dimensionless"
	}
	var pos, neg []string
	for name := range d {
		if d[name] > 0 {
			pos = append(pos, name)
		} else {
			neg = append(neg, name)
		}
	}
	sort.Strings(pos)
	sort.Strings(neg)

	var b strings.Builder
	if len(pos) == 0 {
		b.WriteByte('1')
	}
	for i, name := range pos {
		if i > 0 {
			b.WriteString(" * ")
		}
		b.WriteString(formatDim(name, d[name]))
	}
	for _, name := range neg {
		b.WriteString(" / ")
		b.WriteString(formatDim(name, -d[name]))
	}
	return b.String()
}

func formatDim(name string, exp int) string {
	if exp == 1 {
		return "[" + name + "]"
	}
	return "[" + name + "]^" + strconv.Itoa(exp)
}

func (d Dimensionality) clone() Dimensionality {
	out := make(Dimensionality, len(d))
	for name, exp := range d {
		out[name] = exp
	}
	return out
}

// combine returns d + sign*other, dropping zero exponents. sign is 1 for
// multiplication and -1 for division.
func (d Dimensionality) combine(other Dimensionality, sign int) Dimensionality {
	out := d.clone()
	for name, exp := range other {
		next := out[name] + sign*exp
		if next == 0 {
			delete(out, name)
		} else {
			out[name] = next
		}
	}
	return out
}

// pow returns d scaled by the integer exponent n.
func (d Dimensionality) pow(n int) Dimensionality {
	if n == 0 {
		return Dimensionality{}
	}
	out := make(Dimensionality, len(d))
	for name, exp := range d {
		out[name] = exp * n
	}
	return out
}
