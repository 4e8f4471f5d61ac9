package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

// stubBackend 是测试用的最小后端：每个字符宽度固定，按字号与粗体缩放，并记录调用次数。
type stubBackend struct {
	mu        sync.Mutex
	families  []string
	broken    map[string]bool
	enumCalls int
	openCalls int
	closed    int
	lastText  string
	lastStyle Style
	lastSize  float64
}

func newStubBackend(families ...string) *stubBackend {
	return &stubBackend{families: families, broken: map[string]bool{}}
}

func (b *stubBackend) Families() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enumCalls++
	return b.families, nil
}

func (b *stubBackend) Open(family string, sizePt float64, style Style) (Face, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openCalls++
	if b.broken[family] {
		return nil, ErrFamilyUnavailable
	}
	b.lastSize = sizePt
	b.lastStyle = style
	return &stubFace{b: b, sizePt: sizePt, style: style}, nil
}

type stubFace struct {
	b      *stubBackend
	sizePt float64
	style  Style
}

func (f *stubFace) Measure(text string, spacing Spacing) Measurement {
	f.b.mu.Lock()
	f.b.lastText = text
	f.b.mu.Unlock()
	perRune := f.sizePt * 0.55
	if f.style.Bold() {
		perRune *= 1.1
	}
	n := utf8.RuneCountInString(text)
	return Measurement{Width: float64(n) * perRune, Chars: n, Lines: 1}
}

func (f *stubFace) Close() error {
	f.b.mu.Lock()
	f.b.closed++
	f.b.mu.Unlock()
	return nil
}

func halfPoints(v float64) *float64 { return &v }

func TestEstimateNoFontName(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	for _, run := range []Run{
		{Text: "Hello", Props: &RunProps{}},
		{Text: "Hello", TabWidth: 1},
		{},
	} {
		got, err := e.EstimateWidthTwips(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Fatalf("run without font must measure 0, got %d", got)
		}
	}
	if b.openCalls != 0 {
		t.Fatalf("backend must not be opened, got %d calls", b.openCalls)
	}
}

func TestEstimateShortTextReplicated(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	got, err := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "Hi", Props: &RunProps{FontSize: halfPoints(22)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got <= 0 {
		t.Fatalf("expected positive width, got %d", got)
	}
	if want := strings.Repeat("Hi ", 100); b.lastText != want {
		t.Fatalf("expected 100 copies of %q, got %d runes", "Hi ", utf8.RuneCountInString(b.lastText))
	}
	if b.lastSize != 11 {
		t.Fatalf("22 half-points should open at 11pt, got %g", b.lastSize)
	}
	// 3 runes × 11pt × 0.55 = 18.15px → 272.25 twips
	if got != 272 {
		t.Fatalf("expected 272 twips, got %d", got)
	}
	if b.closed != b.openCalls {
		t.Fatalf("every opened face must be closed: opened=%d closed=%d", b.openCalls, b.closed)
	}
}

func TestEstimateDefaultSize(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	if _, err := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "x", Props: &RunProps{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.lastSize != 11 {
		t.Fatalf("missing size should default to 11pt, got %g", b.lastSize)
	}
}

func TestEstimateNotInstalled(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	run := Run{FontName: "Wingdings999", Text: "abc", Props: &RunProps{}}
	for i := 0; i < 2; i++ {
		got, err := e.EstimateWidthTwips(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Fatalf("uninstalled font must measure 0, got %d", got)
		}
	}
	if b.enumCalls != 1 {
		t.Fatalf("families must be enumerated once, got %d", b.enumCalls)
	}
	if b.openCalls != 0 {
		t.Fatalf("uninstalled font must not be opened, got %d", b.openCalls)
	}
}

func TestEstimateBrokenFontMarkedUnknown(t *testing.T) {
	b := newStubBackend("Calibri", "Broken")
	b.broken["Broken"] = true
	e := NewEstimator(b)
	run := Run{FontName: "Broken", Text: "abc", Props: &RunProps{}}
	for i := 0; i < 3; i++ {
		got, err := e.EstimateWidthTwips(run)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Fatalf("broken font must measure 0, got %d", got)
		}
	}
	if b.openCalls != 1 {
		t.Fatalf("broken font should be opened exactly once, got %d", b.openCalls)
	}
	if !e.Cache().IsUnknown("Broken") {
		t.Fatalf("broken font should be marked unknown")
	}
	// 已标记为 unknown 的字体即使缺少属性也直接返回 0。
	if got, err := e.EstimateWidthTwips(Run{FontName: "Broken", Text: "x"}); err != nil || got != 0 {
		t.Fatalf("unknown font should short-circuit: got=%d err=%v", got, err)
	}
}

func TestEstimateMissingPropsIsFatal(t *testing.T) {
	e := NewEstimator(newStubBackend("Calibri"))
	_, err := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "x"})
	if !errors.Is(err, ErrNoRunProperties) {
		t.Fatalf("expected ErrNoRunProperties, got %v", err)
	}
}

func TestEstimateIdempotent(t *testing.T) {
	e := NewEstimator(newStubBackend("Calibri"))
	run := Run{FontName: "Calibri", Text: "The quick brown fox", TabWidth: 0.25, Props: &RunProps{Bold: true}}
	first, err := e.EstimateWidthTwips(run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.EstimateWidthTwips(run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("identical input must give identical output: %d vs %d", first, second)
	}
}

// TestEstimateMonotonicAcrossMultipliers 验证倍增表不会造成宽度随长度增加而下降。
func TestEstimateMonotonicAcrossMultipliers(t *testing.T) {
	e := NewEstimator(newStubBackend("Calibri"))
	prev := -1
	for n := 1; n <= 48; n++ {
		got, err := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: strings.Repeat("m", n), Props: &RunProps{}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got < prev {
			t.Fatalf("width decreased at length %d: %d < %d", n, got, prev)
		}
		prev = got
	}
}

func TestEstimateTabOnly(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	got, err := e.EstimateWidthTwips(Run{FontName: "Calibri", TabWidth: 0.5, Props: &RunProps{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 720 {
		t.Fatalf("half-inch tab should contribute 720 twips, got %d", got)
	}
	if b.openCalls != 0 {
		t.Fatalf("empty text must not be measured, got %d opens", b.openCalls)
	}

	got, err = e.EstimateWidthTwips(Run{FontName: "Calibri", Props: &RunProps{}})
	if err != nil || got != 0 {
		t.Fatalf("empty run without tabs should be 0: got=%d err=%v", got, err)
	}

	for _, text := range []string{"", "Hi"} {
		got, err = e.EstimateWidthTwips(Run{FontName: "Calibri", Text: text, TabWidth: -5, Props: &RunProps{}})
		if err != nil || got != 0 {
			t.Fatalf("negative tab with text %q should clamp to 0: got=%d err=%v", text, got, err)
		}
	}
}

func TestEstimateTabOnlySkipsOpen(t *testing.T) {
	b := newStubBackend("Calibri")
	b.broken["Calibri"] = true
	e := NewEstimator(b)
	got, err := e.EstimateWidthTwips(Run{FontName: "Calibri", TabWidth: 0.5, Props: &RunProps{}})
	if err != nil || got != 720 {
		t.Fatalf("tab-only run keeps its tab width: got=%d err=%v", got, err)
	}
	if b.openCalls != 0 || e.Cache().IsUnknown("Calibri") {
		t.Fatalf("tab-only run must not open or mark the family: opens=%d", b.openCalls)
	}
	if got, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "x", TabWidth: 0.5, Props: &RunProps{}}); got != 0 {
		t.Fatalf("broken family with text should be 0, got %d", got)
	}
	if !e.Cache().IsUnknown("Calibri") {
		t.Fatal("failed open should mark the family unknown")
	}
}

func TestEstimateTabAddedToText(t *testing.T) {
	e := NewEstimator(newStubBackend("Calibri"))
	props := &RunProps{}
	plain, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "abcdefgh", Props: props})
	tabbed, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: "abcdefgh", TabWidth: 1, Props: props})
	if diff := tabbed - plain; diff < 1439 || diff > 1440 {
		t.Fatalf("one-inch tab should add 1440 twips, added %d", diff)
	}
}

func TestEstimateComplexScriptFlags(t *testing.T) {
	b := newStubBackend("Calibri")
	e := NewEstimator(b)
	text := "Bold text"

	direct, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: text, Props: &RunProps{Bold: true}})
	if b.lastStyle != StyleBold {
		t.Fatalf("direct bold should open bold, got %s", b.lastStyle)
	}
	cs, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: text, Props: &RunProps{BoldCS: true}})
	if b.lastStyle != StyleBold {
		t.Fatalf("complex-script bold should open bold, got %s", b.lastStyle)
	}
	if direct != cs {
		t.Fatalf("bold and bold-cs must measure the same: %d vs %d", direct, cs)
	}
	regular, _ := e.EstimateWidthTwips(Run{FontName: "Calibri", Text: text, Props: &RunProps{}})
	if regular >= direct {
		t.Fatalf("bold should be wider than regular: %d vs %d", direct, regular)
	}

	_, _ = e.EstimateWidthTwips(Run{FontName: "Calibri", Text: text, Props: &RunProps{ItalicCS: true, Bold: true}})
	if b.lastStyle != StyleBold|StyleItalic {
		t.Fatalf("expected bold-italic, got %s", b.lastStyle)
	}
}

func TestMultiplierTable(t *testing.T) {
	cases := map[int]int{1: 100, 2: 100, 3: 50, 4: 50, 5: 25, 8: 25, 9: 12, 16: 12, 17: 6, 32: 6, 33: 1, 500: 1}
	for length, want := range cases {
		if got := Multiplier(length); got != want {
			t.Fatalf("Multiplier(%d): want %d, got %d", length, want, got)
		}
	}
}

func TestEstimateAllStopsOnFatal(t *testing.T) {
	e := NewEstimator(newStubBackend("Calibri"))
	runs := []Run{
		{FontName: "Calibri", Text: "ok", Props: &RunProps{}},
		{FontName: "Calibri", Text: "bad"},
		{FontName: "Calibri", Text: "never", Props: &RunProps{}},
	}
	res, err := e.EstimateAll(runs)
	if !errors.Is(err, ErrNoRunProperties) {
		t.Fatalf("expected ErrNoRunProperties, got %v", err)
	}
	if len(res) != 1 || res[0].Twips <= 0 {
		t.Fatalf("expected one measured result before the failure, got %+v", res)
	}
}

func TestSharedCacheAcrossEstimators(t *testing.T) {
	b := newStubBackend("Calibri", "Broken")
	b.broken["Broken"] = true
	cache := NewFontCache(b)
	first := NewEstimator(b, WithCache(cache))
	second := NewEstimator(b, WithCache(cache))
	run := Run{FontName: "Broken", Text: "x", Props: &RunProps{}}
	_, _ = first.EstimateWidthTwips(run)
	_, _ = second.EstimateWidthTwips(run)
	if b.openCalls != 1 {
		t.Fatalf("shared cache should prevent a second open, got %d", b.openCalls)
	}
	if b.enumCalls != 1 {
		t.Fatalf("shared cache should enumerate once, got %d", b.enumCalls)
	}
}
