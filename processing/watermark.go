package processing

import (
	"fmt"
	"image"
	"image/color"
	"studio/models"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// watermark overlays the gallery's logo (ImagePath) or text on img
func (p *Processor) watermark(img image.Image, settings models.Watermark) (image.Image, error) {
	bounds := img.Bounds()
	// Mark spans a quarter of the photo width
	width := bounds.Dx() / 4
	if width < 16 {
		width = 16
	}
	var mark image.Image
	if settings.ImagePath != "" {
		logo, err := p.logo(settings.ImagePath)
		if err != nil {
			return nil, err
		}
		mark = imaging.Resize(logo, width, 0, imaging.Lanczos)
	} else if settings.Text != "" {
		mark = imaging.Resize(textMark(settings.Text), width, 0, imaging.Linear)
	} else {
		return img, nil
	}
	opacity := settings.ClampedOpacity()
	result := imaging.Clone(img)
	if settings.Tiled {
		step := mark.Bounds().Size()
		if step.X < 1 || step.Y < 1 {
			return result, nil
		}
		for y := 0; y < bounds.Dy(); y += step.Y * 3 {
			for x := (y / (step.Y * 3) % 2) * step.X; x < bounds.Dx(); x += step.X * 2 {
				result = imaging.Overlay(result, mark, image.Pt(x, y), opacity)
			}
		}
		return result, nil
	}
	return imaging.Overlay(result, mark, markPosition(bounds, mark.Bounds(), settings.Position), opacity), nil
}

func (p *Processor) logo(path string) (image.Image, error) {
	if logo, ok := p.logos.Get(path); ok {
		return logo, nil
	}
	r, err := loadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("loading watermark %s: %w", path, err)
	}
	logo, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding watermark %s: %w", path, err)
	}
	p.logos.Set(path, logo)
	return logo, nil
}

// textMark renders text in white with a dark shadow on a transparent background
func textMark(text string) image.Image {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Face: face}
	w := drawer.MeasureString(text).Ceil() + 4
	h := face.Height + 4
	mark := image.NewNRGBA(image.Rect(0, 0, w, h))
	drawer.Dst = mark
	drawer.Src = image.NewUniform(color.NRGBA{0, 0, 0, 160})
	drawer.Dot = fixed.P(3, 3+face.Ascent)
	drawer.DrawString(text)
	drawer.Src = image.White
	drawer.Dot = fixed.P(2, 2+face.Ascent)
	drawer.DrawString(text)
	return mark
}

func markPosition(bounds, mark image.Rectangle, position models.WatermarkPosition) image.Point {
	margin := bounds.Dx() / 50
	right := bounds.Dx() - mark.Dx() - margin
	bottom := bounds.Dy() - mark.Dy() - margin
	switch position {
	case models.WatermarkCenter:
		return image.Pt((bounds.Dx()-mark.Dx())/2, (bounds.Dy()-mark.Dy())/2)
	case models.WatermarkTopLeft:
		return image.Pt(margin, margin)
	case models.WatermarkTopRight:
		return image.Pt(right, margin)
	case models.WatermarkBottomLeft:
		return image.Pt(margin, bottom)
	}
	return image.Pt(right, bottom)
}
