package thumbnail

import (
	"bytes"
	"image/color"
	"log"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	PlaceholderWidth  = 480
	PlaceholderHeight = 270
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		log.Fatal(err)
	}
}

func RenderPlaceholder(width, height int, label string) *gg.Context {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.RGBA{R: 30, G: 30, B: 36, A: 255})
	dc.Clear()

	// play button
	cx, cy := float64(width)/2, float64(height)/2-float64(height)/12
	r := float64(height) / 6
	dc.SetColor(color.RGBA{R: 70, G: 70, B: 82, A: 255})
	dc.DrawCircle(cx, cy, r)
	dc.Fill()
	dc.SetColor(color.RGBA{R: 200, G: 200, B: 210, A: 255})
	dc.MoveTo(cx-r/3, cy-r/2)
	dc.LineTo(cx-r/3, cy+r/2)
	dc.LineTo(cx+r/2, cy)
	dc.ClosePath()
	dc.Fill()

	if label != "" {
		dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: float64(height) / 12}))
		dc.DrawStringAnchored(label, float64(width)/2, float64(height)-float64(height)/6, 0.5, 0.5)
	}
	return dc
}

var (
	placeholderOnce sync.Once
	placeholderPNG  []byte
	placeholderErr  error
)

// PlaceholderPNG is the encoded default thumbnail, rendered on first use.
func PlaceholderPNG() ([]byte, error) {
	placeholderOnce.Do(func() {
		buff := &bytes.Buffer{}
		if err := RenderPlaceholder(PlaceholderWidth, PlaceholderHeight, "No thumbnail").EncodePNG(buff); err != nil {
			placeholderErr = err
			return
		}
		placeholderPNG = buff.Bytes()
	})
	return placeholderPNG, placeholderErr
}
