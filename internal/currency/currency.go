// Package currency formats amounts as Brazilian reais for display.
package currency

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Zero is what Format returns for nil or non-numeric input.
const Zero = "R$ 0,00"

const (
	billion = 1_000_000_000
	million = 1_000_000
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Format renders amount with a magnitude suffix:
//
//	1234.56       -> R$ 1.234,56
//	1234567.89    -> R$ 1,23M
//	1234567890.12 -> R$ 1,23B
//
// nil, NaN, infinities and anything that is not a number yield Zero.
func Format(amount any) string {
	v, ok := toFloat(amount)
	if !ok {
		return Zero
	}
	switch abs := math.Abs(v); {
	case abs >= billion:
		return "R$ " + fixed(v/billion, 2) + "B"
	case abs >= million:
		return "R$ " + fixed(v/million, 2) + "M"
	default:
		return "R$ " + fixed(v, 2)
	}
}

// Full renders amount without a magnitude suffix (R$ 1.234.567,89).
func Full(amount any) string {
	v, ok := toFloat(amount)
	if !ok {
		return Zero
	}
	return "R$ " + fixed(v, 2)
}

// Count renders an integer with Brazilian digit grouping (12.345).
func Count(n int) string {
	return printer.Sprint(number.Decimal(n))
}

// Number renders x with the given number of decimal places, or "-" when x
// is NaN or infinite.
func Number(x float64, places int) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "-"
	}
	return fixed(x, places)
}

func fixed(v float64, places int) string {
	return printer.Sprint(number.Decimal(v, number.Scale(places)))
}

func toFloat(amount any) (float64, bool) {
	var v float64
	switch x := amount.(type) {
	case nil:
		return 0, false
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int8:
		v = float64(x)
	case int16:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint8:
		v = float64(x)
	case uint16:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case decimal.Decimal:
		v = x.InexactFloat64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		f, ok := reflectFloat(reflect.ValueOf(amount))
		if !ok {
			return 0, false
		}
		v = f
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// reflectFloat follows pointers and reads named numeric types by kind.
func reflectFloat(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return 0, false
		}
		return toFloat(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
