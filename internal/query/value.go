package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Var is a variable placeholder rendered as $name.
type Var string

// Enum is an enum literal rendered without quotes, e.g. DESC.
type Enum string

// Object is an input object literal whose fields keep their order,
// e.g. an ordering argument {field: CREATED_AT, direction: DESC}.
type Object []Arg

func writeValue(b *strings.Builder, v any, vars map[string]any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case Var:
		writeVar(b, string(x), vars)
	case Enum:
		b.WriteString(string(x))
	case string:
		if strings.HasPrefix(x, "$") {
			writeVar(b, x[1:], vars)
			return
		}
		writeString(b, x)
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int:
		b.WriteString(strconv.Itoa(x))
	case int32:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint:
		b.WriteString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		b.WriteString(x.String())
	case time.Time:
		writeString(b, x.UTC().Format(time.RFC3339))
	case Object:
		writeObject(b, x, vars)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, len(keys))
		for i, k := range keys {
			obj[i] = Arg{Name: k, Value: x[k]}
		}
		writeObject(b, obj, vars)
	case fmt.Stringer:
		writeString(b, x.String())
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			b.WriteByte('[')
			for i := 0; i < rv.Len(); i++ {
				if i > 0 {
					b.WriteString(", ")
				}
				writeValue(b, rv.Index(i).Interface(), vars)
			}
			b.WriteByte(']')
			return
		}
		writeString(b, fmt.Sprint(v))
	}
}

// writeVar substitutes a bound variable or emits the placeholder verbatim.
// Bound values are rendered without bindings so substitution never recurses.
func writeVar(b *strings.Builder, name string, vars map[string]any) {
	if v, ok := vars[name]; ok {
		writeValue(b, v, nil)
		return
	}
	b.WriteByte('$')
	b.WriteString(name)
}

func writeObject(b *strings.Builder, obj Object, vars map[string]any) {
	b.WriteByte('{')
	for i, a := range obj {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Name)
		b.WriteString(": ")
		writeValue(b, a.Value, vars)
	}
	b.WriteByte('}')
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
