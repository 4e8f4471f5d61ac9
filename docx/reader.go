// Package docx extracts measurable runs from DOCX (Office Open XML) documents.
//
// Each run is resolved against the style hierarchy (document defaults,
// paragraph styles, character styles, direct formatting) and the theme font
// scheme, producing metrics.Run values ready for width estimation.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/ByLCY/twips/metrics"
)

// defaultTabStop is used when settings.xml carries no w:defaultTabStop (twips).
const defaultTabStop = 720

// Reader provides access to the runs of a DOCX document.
type Reader struct {
	closer    io.Closer
	zipReader *zip.Reader
	document  *documentXML
	styles    *stylesXML
	settings  *settingsXML
	theme     *themeXML
	resolver  *resolver
}

// RunInfo locates a run in the document and carries its descriptor.
type RunInfo struct {
	Paragraph int         `json:"paragraph"`
	Index     int         `json:"index"`
	Run       metrics.Run `json:"run"`
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	r, err := newReader(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, err
	}
	r.closer = zr
	return r, nil
}

// OpenBytes reads a DOCX package held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zipReader: zr}
	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.parseDocument(); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	// styles, settings and theme are optional parts
	r.styles = &stylesXML{}
	if err := r.parsePart("word/styles.xml", r.styles); err != nil {
		r.styles = nil
	}
	r.settings = &settingsXML{}
	if err := r.parsePart("word/settings.xml", r.settings); err != nil {
		r.settings = nil
	}
	r.theme = &themeXML{}
	if err := r.parsePart("word/theme/theme1.xml", r.theme); err != nil {
		r.theme = nil
	}
	r.resolver = newResolver(r.styles, r.theme)
	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}
	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}
	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

func (r *Reader) parsePart(name string, v any) error {
	data, err := r.getFileContent(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling %s: %w", name, err)
	}
	return nil
}

func (r *Reader) parseDocument() error {
	r.document = &documentXML{}
	return r.parsePart("word/document.xml", r.document)
}

// ParagraphCount returns the number of paragraphs, including table cells.
func (r *Reader) ParagraphCount() int {
	return len(r.document.Body.Paragraphs)
}

// TabStop returns the document's default tab stop in twips.
func (r *Reader) TabStop() float64 {
	if r.settings != nil && r.settings.DefaultTabStop != nil && r.settings.DefaultTabStop.Val != nil {
		if v, err := strconv.ParseFloat(*r.settings.DefaultTabStop.Val, 64); err == nil && v > 0 {
			return v
		}
	}
	return defaultTabStop
}

// Runs returns every run of the document in order, with resolved properties.
// Runs without text or tabs are included; the estimator measures them as 0.
func (r *Reader) Runs() []RunInfo {
	tabInches := metrics.Length{Value: r.TabStop(), Unit: metrics.UnitTwip}.Inches()
	var out []RunInfo
	for pi, p := range r.document.Body.Paragraphs {
		para := r.resolver.paragraph(p.Properties)
		for ri, run := range p.Runs {
			out = append(out, RunInfo{
				Paragraph: pi,
				Index:     ri,
				Run:       r.resolver.run(para, run, tabInches),
			})
		}
	}
	return out
}

// MetricsRuns returns just the run descriptors.
func (r *Reader) MetricsRuns() []metrics.Run {
	infos := r.Runs()
	out := make([]metrics.Run, len(infos))
	for i, info := range infos {
		out[i] = info.Run
	}
	return out
}
