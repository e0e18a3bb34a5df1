package data

import (
	"cmp"
	"fmt"
	"math"
	"time"

	"golang.org/x/text/cases"
)

// Comparator orders two rows.
type Comparator func(a, b []any) int

// Ascending returns a comparator ordering rows by the value in col. Nil
// values sort first and NaN sorts after every other number. Mixed columns
// group values by kind. Strings are
// compared after Unicode case folding unless caseSensitive is set.
func Ascending(col int, caseSensitive bool) Comparator {
	var fold cases.Caser
	if !caseSensitive {
		fold = cases.Fold()
	}
	return func(a, b []any) int {
		return CompareValues(cell(a, col), cell(b, col), func(s string) string {
			if caseSensitive {
				return s
			}
			return fold.String(s)
		})
	}
}

// Descending returns the reverse of Ascending.
func Descending(col int, caseSensitive bool) Comparator {
	return Reverse(Ascending(col, caseSensitive))
}

// Reverse inverts a comparator.
func Reverse(c Comparator) Comparator {
	return func(a, b []any) int { return c(b, a) }
}

func cell(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

// CompareValues compares two cell values. Values of different kinds order
// by kind: nil, booleans, numbers, times, strings, then anything else.
// norm, when set, normalizes strings before comparing.
func CompareValues(a, b any, norm func(string) string) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch ka {
	case kindNil:
		return 0
	case kindBool:
		switch ab, bb := a.(bool), b.(bool); {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch aNaN, bNaN := math.IsNaN(fa), math.IsNaN(fb); {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		}
		return cmp.Compare(fa, fb)
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		sa, sb := a.(string), b.(string)
		if norm != nil {
			sa, sb = norm(sa), norm(sb)
		}
		return cmp.Compare(sa, sb)
	}

	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	if norm != nil {
		sa, sb = norm(sa), norm(sb)
	}
	return cmp.Compare(sa, sb)
}

const (
	kindNil = iota
	kindBool
	kindNumber
	kindTime
	kindString
	kindOther
)

func kindOf(v any) int {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case time.Time:
		return kindTime
	case string:
		return kindString
	}
	if _, ok := toFloat(v); ok {
		return kindNumber
	}
	return kindOther
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
