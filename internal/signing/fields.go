package signing

import (
	"strings"
)

type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields is an insertion-ordered list of key/value pairs. Order is part of
// every canonical string built from it.
type Fields []Field

func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

// Value returns the value for key or an empty string.
func (f Fields) Value(key string) string {
	v, _ := f.Get(key)
	return v
}

func (f Fields) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set replaces the value of an existing key in place, keeping its position,
// or appends a new one.
func (f *Fields) Set(key, value string) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

func (f Fields) Keys() []string {
	keys := make([]string, len(f))
	for i, field := range f {
		keys[i] = field.Key
	}
	return keys
}

func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, field := range f {
		m[field.Key] = field.Value
	}
	return m
}

// Without returns a copy of f with the given keys removed.
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, 0, len(f))
	for _, field := range f {
		if contains(keys, field.Key) {
			continue
		}
		out = append(out, field)
	}
	return out
}

// Join renders "k=v" pairs joined by sep in the current order.
func (f Fields) Join(sep string) string {
	var b strings.Builder
	for i, field := range f {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(field.Key)
		b.WriteByte('=')
		b.WriteString(field.Value)
	}
	return b.String()
}

// ParseDelimited splits a "k=v<sep>k=v" string. Values may contain '='; only
// the first one in each pair separates key from value. Empty segments are skipped.
func ParseDelimited(raw, sep string) Fields {
	var out Fields
	for _, part := range strings.Split(raw, sep) {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		out = append(out, Field{Key: key, Value: value})
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
