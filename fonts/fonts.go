// Package fonts builds an inventory of the font files installed on the system.
//
// Families are keyed by the legacy family name stored in each font's name
// table (name ID 1), which is the name word processors write into documents.
package fonts

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// Style 描述字体文件自身的粗斜体属性。
type Style struct {
	Bold   bool `json:"bold"`
	Italic bool `json:"italic"`
}

// Face is one font inside a font file.
type Face struct {
	Path      string `json:"path"`
	Index     int    `json:"index"` // position inside a collection, 0 otherwise
	Family    string `json:"family"`
	Subfamily string `json:"subfamily"`
	Style     Style  `json:"style"`
}

// Inventory groups faces by family name.
type Inventory struct {
	byFamily map[string][]Face
}

// NewInventory builds an inventory from already-known faces.
func NewInventory(faces ...Face) *Inventory {
	inv := &Inventory{byFamily: map[string][]Face{}}
	for _, f := range faces {
		inv.add(f)
	}
	return inv
}

func (inv *Inventory) add(f Face) {
	if f.Family == "" {
		return
	}
	inv.byFamily[f.Family] = append(inv.byFamily[f.Family], f)
}

// Len returns the number of families.
func (inv *Inventory) Len() int { return len(inv.byFamily) }

// Families returns the family names, sorted.
func (inv *Inventory) Families() []string {
	out := make([]string, 0, len(inv.byFamily))
	for name := range inv.byFamily {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the face of family closest to style: an exact match first,
// then one with the same slant, then the same weight, then any face.
func (inv *Inventory) Lookup(family string, style Style) (Face, bool) {
	faces := inv.byFamily[family]
	if len(faces) == 0 {
		return Face{}, false
	}
	best, bestScore := faces[0], -1
	for _, f := range faces {
		score := 0
		if f.Style.Italic == style.Italic {
			score += 2
		}
		if f.Style.Bold == style.Bold {
			score++
		}
		if score > bestScore {
			best, bestScore = f, score
		}
	}
	return best, true
}

var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true, ".otc": true}

// Scan walks dirs and records every parsable font. Missing directories and
// unreadable files are skipped; an error is returned only when no directory
// could be walked at all.
func Scan(dirs []string) (*Inventory, error) {
	inv := NewInventory()
	walked := 0
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		walked++
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// 无权限的子目录直接跳过
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !fontExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			faces, err := ParseFile(path)
			if err != nil {
				return nil
			}
			for _, f := range faces {
				inv.add(f)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("扫描字体目录 %s 失败: %w", dir, err)
		}
	}
	if walked == 0 && len(dirs) > 0 {
		return inv, fmt.Errorf("no font directory found in %s", strings.Join(dirs, string(os.PathListSeparator)))
	}
	return inv, nil
}

// ParseFile reads the faces contained in one font file.
func ParseFile(path string) ([]Face, error) {
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse reads the faces in data; path is recorded on each face.
func Parse(path string, data []byte) ([]Face, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".ttc" || ext == ".otc" {
		coll, err := sfnt.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("解析字体集合 %s 失败: %w", path, err)
		}
		var faces []Face
		for i := 0; i < coll.NumFonts(); i++ {
			f, err := coll.Font(i)
			if err != nil {
				continue
			}
			faces = append(faces, describe(path, i, f))
		}
		return faces, nil
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", path, err)
	}
	return []Face{describe(path, 0, f)}, nil
}

func describe(path string, index int, f *sfnt.Font) Face {
	var buf sfnt.Buffer
	family, _ := f.Name(&buf, sfnt.NameIDFamily)
	sub, _ := f.Name(&buf, sfnt.NameIDSubfamily)
	return Face{
		Path:      path,
		Index:     index,
		Family:    family,
		Subfamily: sub,
		Style:     ParseStyle(sub),
	}
}

// ParseStyle derives weight and slant from a subfamily name such as
// "Bold Italic" or "Black Oblique".
func ParseStyle(subfamily string) Style {
	s := strings.ToLower(subfamily)
	var st Style
	if strings.Contains(s, "bold") || strings.Contains(s, "black") || strings.Contains(s, "heavy") {
		st.Bold = true
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		st.Italic = true
	}
	return st
}

// Load returns the raw bytes of a font file.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}
