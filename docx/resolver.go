package docx

import (
	"strings"

	"github.com/ByLCY/twips/metrics"
)

// fontSlots holds the four script-specific font names of w:rFonts.
type fontSlots struct {
	ascii, hAnsi, cs, eastAsia string
}

// runProps is the effective formatting accumulated along the style hierarchy.
// Nil pointers mean "not specified at this level".
type runProps struct {
	fonts          fontSlots
	sz, szCs       *float64
	b, bCs, i, iCs *bool
	complex        *bool // w:rtl or w:cs
}

// paraContext carries the formatting a paragraph passes down to its runs.
type paraContext struct {
	base runProps // defaults + paragraph style chain
	mark runProps // base + paragraph mark properties
}

// resolver resolves formatting through styles.xml and the theme.
type resolver struct {
	styles       map[string]styleDefXML
	defaultPara  string
	defaults     runProps
	theme        *themeXML
	maxChainSize int
}

func newResolver(styles *stylesXML, theme *themeXML) *resolver {
	rs := &resolver{
		styles:       map[string]styleDefXML{},
		theme:        theme,
		maxChainSize: 32,
	}
	if styles == nil {
		return rs
	}
	for _, s := range styles.Styles {
		rs.styles[s.StyleID] = s
		if s.Type == "paragraph" && metrics.ParseOnOff(s.Default != "", &s.Default) {
			rs.defaultPara = s.StyleID
		}
	}
	rs.apply(&rs.defaults, styles.DocDefaults.RPr)
	return rs
}

// styleChain returns the basedOn chain of id, root first. Cycles and
// missing parents end the chain.
func (rs *resolver) styleChain(id string) []styleDefXML {
	var chain []styleDefXML
	seen := map[string]bool{}
	for id != "" && !seen[id] && len(chain) < rs.maxChainSize {
		s, ok := rs.styles[id]
		if !ok {
			break
		}
		seen[id] = true
		chain = append([]styleDefXML{s}, chain...)
		id = ""
		if s.BasedOn != nil && s.BasedOn.Val != nil {
			id = *s.BasedOn.Val
		}
	}
	return chain
}

func (rs *resolver) paragraph(pPr *paragraphPropsXML) paraContext {
	ctx := paraContext{base: rs.defaults}
	styleID := rs.defaultPara
	if pPr != nil && pPr.Style != nil && pPr.Style.Val != nil {
		styleID = *pPr.Style.Val
	}
	for _, s := range rs.styleChain(styleID) {
		rs.apply(&ctx.base, s.RPr)
	}
	ctx.mark = ctx.base
	if pPr != nil {
		rs.apply(&ctx.mark, pPr.RPr)
	}
	return ctx
}

func (rs *resolver) run(para paraContext, r runXML, tabInches float64) metrics.Run {
	props := para.base
	if r.Properties != nil {
		if r.Properties.Style != nil && r.Properties.Style.Val != nil {
			for _, s := range rs.styleChain(*r.Properties.Style.Val) {
				rs.apply(&props, s.RPr)
			}
		}
		rs.apply(&props, r.Properties)
	}

	var text strings.Builder
	for _, t := range r.Text {
		text.WriteString(t.Value)
	}
	lang := languageType(text.String(), isOn(props.complex))

	font := props.fonts.pick(lang)
	if font == "" {
		font = para.mark.fonts.pick(lang)
	}

	return metrics.Run{
		FontName:     font,
		Text:         text.String(),
		TabWidth:     float64(len(r.Tabs)) * tabInches,
		LanguageType: lang,
		Props: &metrics.RunProps{
			FontSize: metrics.FontSize(lang, &metrics.SizeAttrs{Sz: props.sz, SzCs: props.szCs}),
			Bold:     isOn(props.b),
			BoldCS:   isOn(props.bCs),
			Italic:   isOn(props.i),
			ItalicCS: isOn(props.iCs),
		},
	}
}

// apply overlays src onto dst.
func (rs *resolver) apply(dst *runProps, src *runPropsXML) {
	if src == nil {
		return
	}
	if f := src.Fonts; f != nil {
		setFont(&dst.fonts.ascii, f.ASCII, rs.themeFont(f.ASCIITheme))
		setFont(&dst.fonts.hAnsi, f.HAnsi, rs.themeFont(f.HAnsiTheme))
		setFont(&dst.fonts.cs, f.CS, rs.themeFont(f.CSTheme))
		setFont(&dst.fonts.eastAsia, f.EastAsia, rs.themeFont(f.EastAsiaTheme))
	}
	setSize(&dst.sz, src.Size)
	setSize(&dst.szCs, src.SizeCS)
	setOnOff(&dst.b, src.Bold)
	setOnOff(&dst.bCs, src.BoldCS)
	setOnOff(&dst.i, src.Italic)
	setOnOff(&dst.iCs, src.ItalicCS)
	setOnOff(&dst.complex, src.RTL)
	if src.CS != nil && metrics.ParseOnOff(true, src.CS.Val) {
		on := true
		dst.complex = &on
	}
}

// themeFont maps a theme reference such as "minorHAnsi" to a typeface.
func (rs *resolver) themeFont(ref string) string {
	if ref == "" || rs.theme == nil {
		return ""
	}
	coll := rs.theme.Minor
	if strings.HasPrefix(ref, "major") {
		coll = rs.theme.Major
	}
	switch {
	case strings.HasSuffix(ref, "Bidi"):
		return coll.CS.Typeface
	case strings.HasSuffix(ref, "EastAsia"):
		return coll.EastAsia.Typeface
	default:
		return coll.Latin.Typeface
	}
}

// pick chooses the slot used for text of the given language type.
func (f fontSlots) pick(lang string) string {
	switch lang {
	case metrics.LanguageBidi:
		return firstNonEmpty(f.cs, f.ascii, f.hAnsi)
	case languageEastAsia:
		return firstNonEmpty(f.eastAsia, f.ascii, f.hAnsi)
	default:
		return firstNonEmpty(f.ascii, f.hAnsi)
	}
}

// setFont prefers a theme typeface over the explicit name, as Word does.
func setFont(dst *string, explicit, theme string) {
	switch {
	case theme != "":
		*dst = theme
	case explicit != "":
		*dst = explicit
	}
}

func setSize(dst **float64, v *valXML) {
	if v == nil || v.Val == nil {
		return
	}
	if f, ok := metrics.ParseHalfPoints(*v.Val); ok {
		*dst = &f
	}
}

func setOnOff(dst **bool, v *valXML) {
	if v == nil {
		return
	}
	on := metrics.ParseOnOff(true, v.Val)
	*dst = &on
}

func isOn(b *bool) bool { return b != nil && *b }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
