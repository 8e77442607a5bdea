package addr

import (
	"net/url"
	"sort"
	"strings"
)

// Values is an immutable ordered multimap from a key to its list of values.
// It is used for both the query component and the legacy ';' parameters of a
// URL. Keys keep the order in which they were first seen.
//
// The zero value is an empty Values ready to use.
type Values struct {
	keys []string
	vals map[string][]string
}

// ParseValues parses a "k=v<sep>k2=v2" string. Keys without "=" map to a
// single blank value, repeated keys accumulate, and keys and values are
// query-unescaped ('+' is a space). Malformed escapes are kept literally.
func ParseValues(raw string, sep byte) Values {
	var v Values
	for _, segment := range strings.Split(raw, string(sep)) {
		if segment == "" {
			continue
		}
		name, value, _ := strings.Cut(segment, "=")
		v = v.appendValue(unescape(name), unescape(value))
	}
	return v
}

// FromMap builds Values holding one value per key. Keys are sorted so that
// the result does not depend on map iteration order.
func FromMap(m map[string]string) Values {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var v Values
	for _, name := range names {
		v = v.appendValue(name, m[name])
	}
	return v
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func (v Values) appendValue(name, value string) Values {
	out := v.clone()
	if _, ok := out.vals[name]; !ok {
		out.keys = append(out.keys, name)
	}
	out.vals[name] = append(out.vals[name], value)
	return out
}

func (v Values) clone() Values {
	out := Values{
		keys: make([]string, len(v.keys)),
		vals: make(map[string][]string, len(v.vals)),
	}
	copy(out.keys, v.keys)
	for name, list := range v.vals {
		out.vals[name] = append([]string(nil), list...)
	}
	return out
}

// Len returns the number of distinct keys.
func (v Values) Len() int {
	return len(v.keys)
}

// Keys returns the keys in insertion order.
func (v Values) Keys() []string {
	return append([]string(nil), v.keys...)
}

// Has reports whether name is present.
func (v Values) Has(name string) bool {
	_, ok := v.vals[name]
	return ok
}

// Get returns the first value for name, or "" when absent.
func (v Values) Get(name string) string {
	list := v.vals[name]
	if len(list) == 0 {
		return ""
	}
	return list[0]
}

// All returns a copy of every value stored for name.
func (v Values) All(name string) []string {
	list, ok := v.vals[name]
	if !ok {
		return nil
	}
	return append([]string(nil), list...)
}

// With returns a copy of v where name maps to exactly values. A new key is
// appended after the existing ones; an existing key keeps its position.
func (v Values) With(name string, values ...string) Values {
	out := v.clone()
	if _, ok := out.vals[name]; !ok {
		out.keys = append(out.keys, name)
	}
	out.vals[name] = append([]string{}, values...)
	return out
}

// Without returns a copy of v with name removed.
func (v Values) Without(name string) Values {
	if !v.Has(name) {
		return v
	}
	out := v.clone()
	delete(out.vals, name)
	for i, key := range out.keys {
		if key == name {
			out.keys = append(out.keys[:i], out.keys[i+1:]...)
			break
		}
	}
	return out
}

// Merge returns v overlaid with other. Every key of other replaces the whole
// list stored under the same key in v; keys only in v are kept unchanged.
func (v Values) Merge(other Values) Values {
	out := v
	for _, name := range other.keys {
		out = out.With(name, other.vals[name]...)
	}
	return out
}

// Map returns a copy of v as a plain map.
func (v Values) Map() map[string][]string {
	m := make(map[string][]string, len(v.keys))
	for _, name := range v.keys {
		m[name] = v.All(name)
	}
	return m
}

// Equal reports whether v and other hold the same keys, in the same order,
// with the same values.
func (v Values) Equal(other Values) bool {
	if len(v.keys) != len(other.keys) {
		return false
	}
	for i, name := range v.keys {
		if other.keys[i] != name {
			return false
		}
		a, b := v.vals[name], other.vals[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// Encode serializes v as "k=v<sep>k=v2<sep>k2=v3", query-escaping keys and
// values. Blank values are written as "k=".
func (v Values) Encode(sep byte) string {
	var b strings.Builder
	for _, name := range v.keys {
		for _, value := range v.vals[name] {
			if b.Len() > 0 {
				b.WriteByte(sep)
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

func (v Values) String() string {
	return v.Encode('&')
}
