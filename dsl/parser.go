// Package dsl parses run scripts: a small text format describing runs to
// measure without an OOXML document.
//
//	// one run per declaration
//	run "Calibri" size 11pt bold { "Hello" }
//	run "Arial" bold-cs tab 0.5in lang bidi {
//	  "abc"
//	  "def"
//	}
//
// Unit-less sizes are half-points and unit-less tabs are inches.
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/twips/metrics"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|in|tw|hp|px)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Script is the root AST node of a run script.
type Script struct {
	Decls []*RunDecl `parser:"( Newline | ';' )* ( @@ ( Newline | ';' )* )*"`
}

// RunDecl declares a single run.
type RunDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Font    StringLiteral  `parser:"'run' @String"`
	Options []*Option      `parser:"@@*"`
	Texts   []*TextLiteral `parser:"'{' Newline* ( @@ Newline* )* '}'"`
}

// TextLiteral is one quoted piece of run text.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Option is one formatting token following the font name.
type Option struct {
	Size   *string `parser:"  'size' @Number"`
	SizeCS *string `parser:"| 'size-cs' @Number"`
	Tab    *string `parser:"| 'tab' @Number"`
	Lang   *string `parser:"| 'lang' @('bidi' | 'eastAsia' | 'latin')"`
	Flag   *string `parser:"| @('bold' | 'bold-cs' | 'italic' | 'italic-cs')"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a run script from an io.Reader.
func Parse(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseString parses a run script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}

// Runs converts every declaration into a metrics.Run, in order.
func (s *Script) Runs() []metrics.Run {
	if s == nil {
		return nil
	}
	out := make([]metrics.Run, 0, len(s.Decls))
	for _, d := range s.Decls {
		out = append(out, d.Run())
	}
	return out
}

// Run converts the declaration into a metrics.Run. Later options override
// earlier ones; the text blocks are concatenated.
func (d *RunDecl) Run() metrics.Run {
	var text string
	for _, t := range d.Texts {
		text += string(t.Value)
	}
	run := metrics.Run{
		FontName: string(d.Font),
		Text:     text,
		Props:    &metrics.RunProps{},
	}
	var attrs metrics.SizeAttrs
	for _, o := range d.Options {
		switch {
		case o.Size != nil:
			attrs.Sz = halfPoints(*o.Size)
		case o.SizeCS != nil:
			attrs.SzCs = halfPoints(*o.SizeCS)
		case o.Tab != nil:
			run.TabWidth = inches(*o.Tab)
		case o.Lang != nil:
			run.LanguageType = languageType(*o.Lang)
		case o.Flag != nil:
			switch *o.Flag {
			case "bold":
				run.Props.Bold = true
			case "bold-cs":
				run.Props.BoldCS = true
			case "italic":
				run.Props.Italic = true
			case "italic-cs":
				run.Props.ItalicCS = true
			}
		}
	}
	run.Props.FontSize = metrics.FontSize(run.LanguageType, &attrs)
	return run
}

func halfPoints(raw string) *float64 {
	l := metrics.ParseLength(raw)
	v := l.Value
	if l.Unit != metrics.UnitNone {
		v = l.To(metrics.UnitHalfPoint)
	}
	return &v
}

func inches(raw string) float64 {
	l := metrics.ParseLength(raw)
	if l.Unit == metrics.UnitNone {
		return l.Value
	}
	return l.Inches()
}

func languageType(lang string) string {
	if lang == "latin" {
		return ""
	}
	return lang
}
