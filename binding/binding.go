// Package binding fills ${path} placeholders in run text from JSON data, so a
// single run script can be measured against several data sets.
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/twips/metrics"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Binder expands placeholders against decoded JSON data and remembers the
// paths it could not resolve.
type Binder struct {
	data    any
	missing map[string]struct{}
}

// New returns a Binder over data, typically the result of json.Unmarshal
// into an any.
func New(data any) *Binder {
	return &Binder{data: data, missing: map[string]struct{}{}}
}

// FromJSON decodes raw and returns a Binder over it.
func FromJSON(raw []byte) (*Binder, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析绑定数据失败: %w", err)
	}
	return New(data), nil
}

// Expand replaces every ${a.b[0].c} in text. Unresolvable placeholders are
// kept verbatim and recorded.
func (b *Binder) Expand(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if val, ok := Lookup(b.data, path); ok {
			return format(val)
		}
		b.missing[path] = struct{}{}
		return match
	})
}

// Runs returns copies of runs with their text expanded.
func (b *Binder) Runs(runs []metrics.Run) []metrics.Run {
	out := make([]metrics.Run, len(runs))
	for i, r := range runs {
		r.Text = b.Expand(r.Text)
		out[i] = r
	}
	return out
}

// Missing lists the placeholder paths that could not be resolved, sorted.
func (b *Binder) Missing() []string {
	out := make([]string, 0, len(b.missing))
	for p := range b.missing {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a dotted path with optional [n] indexes in data.
func Lookup(data any, path string) (any, bool) {
	steps, ok := splitPath(path)
	if !ok || len(steps) == 0 {
		return nil, false
	}
	cur := data
	for _, s := range steps {
		switch c := cur.(type) {
		case map[string]any:
			if s.index >= 0 {
				return nil, false
			}
			v, ok := c[s.key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if s.index < 0 || s.index >= len(c) {
				return nil, false
			}
			cur = c[s.index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// step is a map key, or a slice index when index >= 0.
type step struct {
	key   string
	index int
}

func splitPath(path string) ([]step, bool) {
	var steps []step
	for _, seg := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(seg, "[")
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		}
		if rest == "" {
			if strings.HasSuffix(seg, "[") || name == "" {
				return nil, false
			}
			continue
		}
		// rest is "0]" or "0][1]"
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, false
			}
			steps = append(steps, step{index: n})
		}
	}
	return steps, true
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
