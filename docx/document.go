package docx

import "encoding/xml"

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

// bodyXML collects paragraphs in document order, including those nested in
// tables and content controls.
type bodyXML struct {
	Paragraphs []paragraphXML
}

// paragraphXML represents a paragraph element (<w:p>). Runs are collected in
// document order, including runs inside hyperlinks, insertions, smart tags,
// simple fields and content controls.
type paragraphXML struct {
	Properties *paragraphPropsXML
	Runs       []runXML
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style *valXML      `xml:"pStyle"`
	RPr   *runPropsXML `xml:"rPr"` // paragraph mark run properties
}

// runXML represents a text run (<w:r>). Only direct children are decoded, so
// text inside text boxes (w:txbxContent) never reaches Text.
type runXML struct {
	Properties *runPropsXML `xml:"rPr"`
	Text       []textXML    `xml:"t"`
	Tabs       []tabXML     `xml:"tab"`
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style    *valXML   `xml:"rStyle"`
	Fonts    *fontsXML `xml:"rFonts"`
	Bold     *valXML   `xml:"b"`
	BoldCS   *valXML   `xml:"bCs"`
	Italic   *valXML   `xml:"i"`
	ItalicCS *valXML   `xml:"iCs"`
	Size     *valXML   `xml:"sz"`
	SizeCS   *valXML   `xml:"szCs"`
	RTL      *valXML   `xml:"rtl"`
	CS       *valXML   `xml:"cs"`
}

// valXML is any element whose payload is a single w:val attribute. A nil
// Val means the attribute was absent.
type valXML struct {
	Val *string `xml:"val,attr"`
}

// fontsXML represents font settings (<w:rFonts>).
type fontsXML struct {
	ASCII         string `xml:"ascii,attr"`
	HAnsi         string `xml:"hAnsi,attr"`
	CS            string `xml:"cs,attr"`
	EastAsia      string `xml:"eastAsia,attr"`
	ASCIITheme    string `xml:"asciiTheme,attr"`
	HAnsiTheme    string `xml:"hAnsiTheme,attr"`
	CSTheme       string `xml:"cstheme,attr"`
	EastAsiaTheme string `xml:"eastAsiaTheme,attr"`
}

// textXML represents text content (<w:t>).
type textXML struct {
	Value string `xml:",chardata"`
}

// tabXML represents a tab character.
type tabXML struct{}

// stylesXML represents the structure of word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default run properties.
type docDefaultsXML struct {
	RPr *runPropsXML `xml:"rPrDefault>rPr"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type    string             `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID string             `xml:"styleId,attr"`
	Default string             `xml:"default,attr"`
	BasedOn *valXML            `xml:"basedOn"`
	PPr     *paragraphPropsXML `xml:"pPr"`
	RPr     *runPropsXML       `xml:"rPr"`
}

// settingsXML represents word/settings.xml
type settingsXML struct {
	DefaultTabStop *valXML `xml:"defaultTabStop"`
}

// themeXML represents the font scheme of word/theme/theme1.xml
type themeXML struct {
	Major fontCollectionXML `xml:"themeElements>fontScheme>majorFont"`
	Minor fontCollectionXML `xml:"themeElements>fontScheme>minorFont"`
}

// fontCollectionXML holds the script-specific typefaces of a theme font.
type fontCollectionXML struct {
	Latin    typefaceXML `xml:"latin"`
	EastAsia typefaceXML `xml:"ea"`
	CS       typefaceXML `xml:"cs"`
}

type typefaceXML struct {
	Typeface string `xml:"typeface,attr"`
}

// containers are walked through when collecting paragraphs or runs.
var (
	bodyContainers = map[string]bool{
		"tbl": true, "tr": true, "tc": true,
		"sdt": true, "sdtContent": true, "customXml": true,
	}
	runContainers = map[string]bool{
		"hyperlink": true, "ins": true, "smartTag": true, "fldSimple": true,
		"sdt": true, "sdtContent": true, "customXml": true,
	}
)

// UnmarshalXML implements xml.Unmarshaler to keep paragraphs in order.
func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.Paragraphs = append(b.Paragraphs, p)
			case bodyContainers[t.Name.Local]:
				// 继续向内扫描
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

// UnmarshalXML implements xml.Unmarshaler to keep runs in order.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "pPr" && depth == 0:
				p.Properties = &paragraphPropsXML{}
				if err := d.DecodeElement(p.Properties, &t); err != nil {
					return err
				}
			case t.Name.Local == "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case runContainers[t.Name.Local]:
				depth++
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}
