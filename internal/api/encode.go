package api

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// EncodeParams flattens nested parameter maps into the bracketed key form
// the server's parser expects:
//
//	map value at k        -> k[subkey]=value, recursively
//	array of maps at k    -> k[i][subkey]=value
//	array of scalars at k -> repeated k[]=value
//	scalar at k           -> k=value
//
// Output is deterministic: map keys are sorted, array order is preserved.
// Brackets in keys stay literal; everything else is percent-escaped.
func EncodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	var pairs []pair
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flatten(k, params[k], &pairs)
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeKey(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

type pair struct {
	key   string
	value string
}

func flatten(key string, v any, out *[]pair) {
	switch t := v.(type) {
	case nil:
		*out = append(*out, pair{key, ""})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(key+"["+k+"]", t[k], out)
		}
	case []any:
		for i, item := range t {
			if isComposite(item) {
				flatten(key+"["+strconv.Itoa(i)+"]", item, out)
			} else {
				flatten(key+"[]", item, out)
			}
		}
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			items := make([]any, rv.Len())
			for i := range items {
				items[i] = rv.Index(i).Interface()
			}
			flatten(key, items, out)
		case reflect.Map:
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
			}
			flatten(key, m, out)
		default:
			*out = append(*out, pair{key, scalarString(v)})
		}
	}
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// escapeKey percent-escapes a key while keeping the brackets the server's
// parameter parser relies on.
func escapeKey(s string) string {
	s = url.QueryEscape(s)
	s = strings.ReplaceAll(s, "%5B", "[")
	s = strings.ReplaceAll(s, "%5D", "]")
	return s
}
