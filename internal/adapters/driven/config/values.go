// Package config holds the flat key/value table shared by the config stores.
//
// Keys use dot notation: the TOML table [checks.cf] with command = "x" is
// the single key "checks.cf.command". Typed reads never fail; a missing key
// or a value of the wrong type reads as the zero value, and settings
// validation decides whether that is acceptable.
package config

import (
	"sort"
	"strings"
)

// Values is a flat configuration table. It is not safe for concurrent use;
// the stores guard it with their own lock.
type Values map[string]any

// String returns the string stored at key.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer stored at key. TOML integers decode as int64;
// floats are truncated.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns the number stored at key, so "rate = 10" and
// "rate = 10.0" read the same.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns the boolean stored at key.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// StringSlice returns the string array stored at key. Non-string
// elements of a TOML array are skipped.
func (v Values) StringSlice(key string) []string {
	switch list := v[key].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Keys returns the sorted keys starting with prefix.
func (v Values) Keys(prefix string) []string {
	var keys []string
	for k := range v {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Flatten converts decoded TOML tables into dot-notation keys.
func Flatten(tables map[string]any) Values {
	out := make(Values)
	flattenInto(out, tables, "")
	return out
}

func flattenInto(out Values, m map[string]any, prefix string) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, nested, key)
			continue
		}
		out[key] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a leaf and a table
// prefix keeps the leaf and drops the conflicting table entries.
func (v Values) Nest() map[string]any {
	root := make(map[string]any)
	for _, k := range v.Keys("") {
		parts := strings.Split(k, ".")
		node := root
		ok := true
		for _, p := range parts[:len(parts)-1] {
			child, exists := node[p]
			if !exists {
				next := make(map[string]any)
				node[p] = next
				node = next
				continue
			}
			next, isMap := child.(map[string]any)
			if !isMap {
				ok = false
				break
			}
			node = next
		}
		if ok {
			node[parts[len(parts)-1]] = v[k]
		}
	}
	return root
}
