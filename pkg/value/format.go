package value

import (
	"math"
	"strconv"
	"strings"
)

// String renders v in display form. Negative numbers use a high minus (¯)
// and character rows print as quoted strings.
func (v Value) String() string {
	var b strings.Builder
	v.write(&b)
	return b.String()
}

// String renders the array in display form.
func (a *Array) String() string {
	var b strings.Builder
	a.write(&b)
	return b.String()
}

func (v Value) write(b *strings.Builder) {
	switch v.kind {
	case KindNumber:
		b.WriteString(FormatNumber(v.num))
	case KindChar:
		b.WriteString(strconv.QuoteRune(v.char))
	default:
		v.arr.write(b)
	}
}

func (a *Array) write(b *strings.Builder) {
	if a.Rank() == 0 {
		a.Element(0).write(b)
		return
	}
	a.writeAxis(b, 0, 0, a.IsChars())
}

// writeAxis writes the sub-array starting at flat offset off along axis.
// Rows of character arrays are written as quoted strings.
func (a *Array) writeAxis(b *strings.Builder, axis, off int, chars bool) {
	n := a.shape[axis]
	if axis == a.Rank()-1 {
		if chars {
			runes := make([]rune, n)
			for i := range runes {
				runes[i] = a.values[off+i].char
			}
			b.WriteString(strconv.Quote(string(runes)))
			return
		}
		b.WriteByte('[')
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			a.Element(off + i).write(b)
		}
		b.WriteByte(']')
		return
	}

	stride := a.shape[axis+1:].ElementCount()
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		a.writeAxis(b, axis+1, off+i*stride, chars)
	}
	b.WriteByte(']')
}

// FormatNumber formats f with a high minus for negatives.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "¯∞"
	case f == 0:
		return "0"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.Abs(f) < 1e21 && f == math.Trunc(f) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return "¯" + rest
	}
	return s
}
