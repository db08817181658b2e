package signing

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrMissingField = errors.New("required signed field is missing")

// Canonicalizer selects, orders and renders the fields covered by a signature.
type Canonicalizer func(Fields) (string, error)

// Delimited keeps declaration order and joins "k=v" pairs with sep.
func Delimited(sep string, exclude ...string) Canonicalizer {
	return func(f Fields) (string, error) {
		return f.Without(exclude...).Join(sep), nil
	}
}

// Sorted orders pairs by key before joining them with sep.
func Sorted(sep string, exclude ...string) Canonicalizer {
	return func(f Fields) (string, error) {
		kept := f.Without(exclude...)
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Key < kept[j].Key })
		return kept.Join(sep), nil
	}
}

const (
	optionalMarker = "?"
	indexMarker    = "{x}"
)

type templateEntry struct {
	name     string
	optional bool
	// group holds the indexed names of a repeatable group, e.g. "scheduleDate{x}".
	group []string
}

// Template is a positional field list whose values are concatenated without
// separators. A leading "?" marks a field included only when present. Adjacent
// names containing "{x}" form a repeatable group expanded as name1, name2, ...
// for as long as the first member of the group is present.
type Template struct {
	entries []templateEntry
}

func NewTemplate(entries ...string) Template {
	var t Template
	for _, raw := range entries {
		if strings.Contains(raw, indexMarker) {
			name := strings.TrimPrefix(raw, optionalMarker)
			last := len(t.entries) - 1
			if last >= 0 && t.entries[last].group != nil {
				t.entries[last].group = append(t.entries[last].group, name)
				continue
			}
			t.entries = append(t.entries, templateEntry{group: []string{name}})
			continue
		}

		if strings.HasPrefix(raw, optionalMarker) {
			t.entries = append(t.entries, templateEntry{name: raw[len(optionalMarker):], optional: true})
			continue
		}
		t.entries = append(t.entries, templateEntry{name: raw})
	}
	return t
}

func (t Template) Canonicalize(f Fields) (string, error) {
	var b strings.Builder

	for _, e := range t.entries {
		if e.group != nil {
			for i := 1; ; i++ {
				idx := strconv.Itoa(i)
				if !f.Has(strings.Replace(e.group[0], indexMarker, idx, 1)) {
					break
				}
				for _, member := range e.group {
					b.WriteString(f.Value(strings.Replace(member, indexMarker, idx, 1)))
				}
			}
			continue
		}

		v, ok := f.Get(e.name)
		if !ok {
			if e.optional {
				continue
			}
			return "", fmt.Errorf("%w: %s", ErrMissingField, e.name)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}
