package template

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// undefined marks a lookup that found nothing. It renders as an empty
// string and passes through filters untouched.
type undefined struct{}

// Undefined is the value of a missing variable
var Undefined any = undefined{}

// IsUndefined reports whether v is the missing-value marker
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// getField reads a named field from a map
func getField(v any, name string) any {
	switch m := v.(type) {
	case map[string]any:
		if val, ok := m[name]; ok {
			return val
		}
		return Undefined
	case map[string]string:
		if val, ok := m[name]; ok {
			return val
		}
		return Undefined
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if val.IsValid() {
			return val.Interface()
		}
	}
	return Undefined
}

// getIndex reads an element by integer position or a field by string key
func getIndex(v any, key any) any {
	if s, ok := key.(string); ok {
		return getField(v, s)
	}
	idx, ok := toInt(key)
	if !ok {
		return Undefined
	}

	switch l := v.(type) {
	case []any:
		if idx < 0 || idx >= int64(len(l)) {
			return Undefined
		}
		return l[idx]
	case string:
		r := []rune(l)
		if idx < 0 || idx >= int64(len(r)) {
			return Undefined
		}
		return string(r[idx])
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if idx < 0 || idx >= int64(rv.Len()) {
			return Undefined
		}
		return rv.Index(int(idx)).Interface()
	}
	return Undefined
}

// asList converts slices of any element type to []any
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	case float32:
		if float64(n) == math.Trunc(float64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case nil, undefined:
		return false, true
	}
	return false, false
}

// Stringify renders a value the way it appears in template output
func Stringify(v any) string {
	switch s := v.(type) {
	case nil, undefined:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case time.Time:
		return formatISO(s)
	case fmt.Stringer:
		return s.String()
	}

	if l, ok := asList(v); ok {
		parts := make([]string, len(l))
		for i, item := range l {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	}

	if reflect.ValueOf(v).Kind() == reflect.Map {
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}

// formatISO formats t as UTC with millisecond precision, e.g.
// 2024-09-12T21:14:15.000Z
func formatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
