package binding

import (
	"testing"

	"github.com/ByLCY/twips/metrics"
)

const sampleData = `{
  "user": {"name": "Ada", "age": 36},
  "items": [{"name": "Widget", "price": 9.5}, {"name": "Gadget", "price": 12}],
  "matrix": [[1, 2], [3, 4]],
  "empty": null
}`

func TestExpand(t *testing.T) {
	b, err := FromJSON([]byte(sampleData))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	cases := []struct {
		in, want string
	}{
		{"Hello, ${user.name}!", "Hello, Ada!"},
		{"${ user.age } years", "36 years"},
		{"${items[1].name}: ${items[1].price}", "Gadget: 12"},
		{"${items[0].price}", "9.5"},
		{"${matrix[1][0]}", "3"},
		{"[${empty}]", "[]"},
		{"no placeholders", "no placeholders"},
		{"${user.missing}", "${user.missing}"},
		{"${items[5].name}", "${items[5].name}"},
		{"${items.name}", "${items.name}"},
	}
	for _, c := range cases {
		if got := b.Expand(c.in); got != c.want {
			t.Errorf("Expand(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	missing := b.Missing()
	want := []string{"items.name", "items[5].name", "user.missing"}
	if len(missing) != len(want) {
		t.Fatalf("expected missing %v, got %v", want, missing)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Fatalf("expected missing %v, got %v", want, missing)
		}
	}
}

func TestLookupRejectsMalformedPaths(t *testing.T) {
	data := map[string]any{"a": []any{"x"}}
	for _, path := range []string{"", "a..b", "a[", "a[x]", "a[-1]"} {
		if _, ok := Lookup(data, path); ok {
			t.Errorf("path %q should not resolve", path)
		}
	}
	if v, ok := Lookup(data, "a[0]"); !ok || v != "x" {
		t.Errorf("a[0] = %v, %v", v, ok)
	}
}

func TestRunsCopiesText(t *testing.T) {
	b := New(map[string]any{"n": "42"})
	runs := []metrics.Run{
		{FontName: "Calibri", Text: "Invoice ${n}", Props: &metrics.RunProps{}},
		{FontName: "Calibri", TabWidth: 0.5, Props: &metrics.RunProps{}},
	}
	out := b.Runs(runs)
	if out[0].Text != "Invoice 42" {
		t.Fatalf("unexpected text %q", out[0].Text)
	}
	if runs[0].Text != "Invoice ${n}" {
		t.Fatalf("input runs must not change, got %q", runs[0].Text)
	}
	if out[1].TabWidth != 0.5 || out[1].FontName != "Calibri" {
		t.Fatalf("other fields should be kept: %+v", out[1])
	}
}

func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
}
