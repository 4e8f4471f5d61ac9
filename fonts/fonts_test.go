package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// writeGoFonts 把 Go 字体写入临时目录，返回目录路径。
func writeGoFonts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string][]byte{
		"Go-Regular.ttf":    goregular.TTF,
		"sub/Go-Bold.ttf":   gobold.TTF,
		"sub/Go-Italic.TTF": goitalic.TTF,
		"broken.ttf":        []byte("not a font"),
		"readme.txt":        []byte("ignored"),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestScanFindsFamilies(t *testing.T) {
	dir := writeGoFonts(t)
	inv, err := Scan([]string{dir, filepath.Join(dir, "missing")})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	regular, err := Parse("Go-Regular.ttf", goregular.TTF)
	if err != nil || len(regular) != 1 {
		t.Fatalf("parse Go Regular: %v", err)
	}
	family := regular[0].Family
	if family == "" {
		t.Fatalf("Go Regular should carry a family name")
	}
	if inv.Len() != 1 {
		t.Fatalf("expected a single family, got %v", inv.Families())
	}

	bold, ok := inv.Lookup(family, Style{Bold: true})
	if !ok || !bold.Style.Bold || filepath.Base(bold.Path) != "Go-Bold.ttf" {
		t.Fatalf("bold lookup returned %+v", bold)
	}
	italic, ok := inv.Lookup(family, Style{Italic: true})
	if !ok || !italic.Style.Italic {
		t.Fatalf("italic lookup returned %+v", italic)
	}
	// 没有粗斜体文件时优先保留斜体。
	bi, ok := inv.Lookup(family, Style{Bold: true, Italic: true})
	if !ok || !bi.Style.Italic {
		t.Fatalf("bold-italic should fall back to the italic face, got %+v", bi)
	}
	if _, ok := inv.Lookup("No Such Family", Style{}); ok {
		t.Fatalf("unknown family should not be found")
	}
}

func TestScanWithoutDirectories(t *testing.T) {
	inv, err := Scan([]string{filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatalf("expected an error when no directory exists")
	}
	if inv == nil || inv.Len() != 0 {
		t.Fatalf("expected an empty inventory")
	}
	inv, err = Scan(nil)
	if err != nil || inv.Len() != 0 {
		t.Fatalf("no directories should give an empty inventory, got err=%v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("x.ttf", []byte("garbage")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Parse("x.ttc", []byte("garbage")); err == nil {
		t.Fatalf("expected collection parse error")
	}
}

func TestParseStyle(t *testing.T) {
	cases := map[string]Style{
		"Regular":       {},
		"Bold":          {Bold: true},
		"Bold Italic":   {Bold: true, Italic: true},
		"Semibold":      {Bold: true},
		"Black Oblique": {Bold: true, Italic: true},
		"Italic":        {Italic: true},
		"Light":         {},
	}
	for sub, want := range cases {
		if got := ParseStyle(sub); got != want {
			t.Fatalf("ParseStyle(%q): want %+v, got %+v", sub, want, got)
		}
	}
}

func TestDefaultDirsNotEmpty(t *testing.T) {
	if len(DefaultDirs()) == 0 {
		t.Fatalf("expected at least one default font directory")
	}
}
