package visuals

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// fontDirs are searched when the configured font is a bare file name
var fontDirs = []string{
	"/usr/share/fonts/truetype/msttcorefonts",
	"/usr/share/fonts/truetype",
	"/usr/share/fonts/TTF",
	"/Library/Fonts",
	"/System/Library/Fonts/Supplemental",
	`C:\Windows\Fonts`,
}

// LoadFace opens the TrueType font at name (a path or a file in a system font
// dir) at size points. Go Regular is used when the font cannot be found.
func LoadFace(name string, size float64) (font.Face, error) {
	data, err := readFont(name)
	if err != nil {
		log.Printf("[visuals] Font %q unavailable (%v) — using fallback font", name, err)
		data = goregular.TTF
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func readFont(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("no font configured")
	}
	if data, err := os.ReadFile(name); err == nil {
		return data, nil
	}
	if filepath.IsAbs(name) {
		return nil, os.ErrNotExist
	}
	for _, dir := range fontDirs {
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return data, nil
		}
	}
	return nil, os.ErrNotExist
}

// TextStyle is a filled, outlined text look
type TextStyle struct {
	Face        font.Face
	Fill        color.Color
	Stroke      color.Color
	StrokeWidth int
}

// CaptionStyle is white text with a black outline, legible on any background
func CaptionStyle(face font.Face, strokeWidth int) TextStyle {
	return TextStyle{Face: face, Fill: color.White, Stroke: color.Black, StrokeWidth: strokeWidth}
}

// Measure returns the size of the box s occupies when drawn, stroke included
func (st TextStyle) Measure(s string) (w, h int) {
	m := st.Face.Metrics()
	w = font.MeasureString(st.Face, s).Ceil() + 2*st.StrokeWidth
	h = (m.Ascent + m.Descent).Ceil() + 2*st.StrokeWidth
	return w, h
}

// Draw paints s with its box's top-left corner at (x, y)
func (st TextStyle) Draw(dst draw.Image, s string, x, y int) {
	baseline := y + st.StrokeWidth + st.Face.Metrics().Ascent.Ceil()
	left := x + st.StrokeWidth

	d := &font.Drawer{Dst: dst, Face: st.Face}
	if st.StrokeWidth > 0 && st.Stroke != nil {
		d.Src = image.NewUniform(st.Stroke)
		r := st.StrokeWidth
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy > r*r {
					continue
				}
				d.Dot = fixed.P(left+dx, baseline+dy)
				d.DrawString(s)
			}
		}
	}

	d.Src = image.NewUniform(st.Fill)
	d.Dot = fixed.P(left, baseline)
	d.DrawString(s)
}

// CenterX is the left offset that centers a box of width textW in imageW
func CenterX(imageW, textW int) int {
	return (imageW - textW) / 2
}

// DrawLines draws each line centered horizontally from top, separated by gap
// pixels. It stops once the next line would start below limit and returns the
// number of lines drawn.
func DrawLines(dst draw.Image, lines []string, st TextStyle, top, gap, limit int) int {
	w := dst.Bounds().Dx()
	y := top
	for i, line := range lines {
		tw, th := st.Measure(line)
		st.Draw(dst, line, dst.Bounds().Min.X+CenterX(w, tw), y)
		y += th + gap
		if y > limit {
			return i + 1
		}
	}
	return len(lines)
}

// WrapText word-wraps text to lines of at most width characters. Each input
// line is wrapped separately; blank input lines are kept as empty lines.
// Words longer than width are split.
func WrapText(text string, width int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		wrapped := wrapParagraph(para, width)
		if len(wrapped) == 0 {
			wrapped = []string{""}
		}
		lines = append(lines, wrapped...)
	}
	return lines
}

func wrapParagraph(para string, width int) []string {
	if width <= 0 {
		if f := strings.Join(strings.Fields(para), " "); f != "" {
			return []string{f}
		}
		return nil
	}
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(para) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) <= width {
			cur = append(append(cur, ' '), w...)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = nil
		}
		for len(w) > width {
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		cur = w
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}

// ToRGBA returns a drawable copy of img with its origin at (0, 0)
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
