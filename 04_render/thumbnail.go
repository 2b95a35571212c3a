package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"

	visuals "quote-shorts-pipeline/03_visuals"
)

// Thumbnail writes title onto the template image, centered horizontally and
// anchored above the bottom edge, and saves the result as PNG at outFile.
func (r *Renderer) Thumbnail(title, templatePath, outFile string) error {
	tmpl, err := loadImage(templatePath)
	if err != nil {
		return fmt.Errorf("open thumbnail template: %w", err)
	}

	face, err := visuals.LoadFace(r.cfg.Visuals.Font, r.cfg.Render.ThumbnailFontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	canvas := visuals.ToRGBA(tmpl)
	st := visuals.CaptionStyle(face, r.cfg.Visuals.StrokeWidth)
	x, y := ThumbnailOrigin(canvas.Bounds().Dx(), canvas.Bounds().Dy(), st, title, r.cfg.Render.ThumbnailPaddingPx)
	st.Draw(canvas, title, x, y)

	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := png.Encode(f, canvas); err != nil {
		f.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("[render] ✅ Thumbnail ready: %s", outFile)
	return nil
}

// ThumbnailOrigin is the top-left corner of the title box: x = (W − T)/2,
// y = H − textHeight − padding.
func ThumbnailOrigin(imageW, imageH int, st visuals.TextStyle, title string, padding int) (x, y int) {
	tw, th := st.Measure(title)
	return visuals.CenterX(imageW, tw), imageH - th - padding
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
