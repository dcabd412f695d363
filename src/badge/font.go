// Package badge renders SVG status badges for analysis results.
package badge

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultFont is the name of the default built-in font.
const DefaultFont = "go-regular"

var builtin = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-bold":    gobold.TTF,
	"go-mono":    gomono.TTF,
}

// FontNames returns the sorted built-in font names.
func FontNames() []string {
	names := make([]string, 0, len(builtin))
	for k := range builtin {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// FontMetrics holds measured glyph widths and font data for SVG embedding.
type FontMetrics struct {
	name     string           // font family name
	size     float64          // point size
	data     []byte           // raw TTF/OTF bytes for base64 embedding
	advances map[rune]float64 // measured glyph advances (printable ASCII)
	fallback float64          // average width for unmapped runes
}

// TextWidth returns the pixel width of s using measured glyph advances.
func (m *FontMetrics) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		if adv, ok := m.advances[r]; ok {
			w += adv
		} else {
			w += m.fallback
		}
	}
	return w
}

func (m *FontMetrics) FontData() []byte  { return m.data }
func (m *FontMetrics) FontName() string  { return m.name }
func (m *FontMetrics) FontSize() float64 { return m.size }

// LoadFont parses a TTF/OTF and measures the printable ASCII advances at
// size.
func LoadFont(name string, data []byte, size float64) (*FontMetrics, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", name, err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", name, err)
	}
	defer face.Close()

	advances := make(map[rune]float64, 95)
	var total float64
	for r := rune(32); r <= 126; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		px := float64(adv) / 64.0 // fixed.Int26_6
		advances[r] = px
		total += px
	}

	fallback := size * 0.6
	if len(advances) > 0 {
		fallback = total / float64(len(advances))
	}

	family := name
	if n, err := f.Name(&sfnt.Buffer{}, sfnt.NameIDFamily); err == nil && n != "" {
		family = n
	}

	return &FontMetrics{
		name:     family,
		size:     size,
		data:     data,
		advances: advances,
		fallback: fallback,
	}, nil
}

// LoadBuiltinFont loads one of FontNames.
func LoadBuiltinFont(name string, size float64) (*FontMetrics, error) {
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in font %q (available: %v)", name, FontNames())
	}
	return LoadFont(name, data, size)
}

// LoadFontFile loads a TTF/OTF from a filesystem path.
func LoadFontFile(path string, size float64) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadFont(name, data, size)
}
