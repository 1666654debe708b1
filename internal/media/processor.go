// Package media prepares story images and stores or serves them.
package media

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"anonboard/internal/common"
)

// Image is a re-encoded upload ready for an ImageStore.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Processor normalizes uploads: EXIF orientation is applied, the picture is
// fitted inside the configured box, and everything except PNG becomes JPEG.
type Processor struct {
	maxWidth  int
	maxHeight int
	maxPixels int64
}

// DefaultMaxPixels bounds the decoded size of an upload (about 160 MB of RGBA).
const DefaultMaxPixels = 40_000_000

// NewProcessor builds a Processor. maxPixels <= 0 means DefaultMaxPixels.
func NewProcessor(maxWidth, maxHeight int, maxPixels int64) *Processor {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Processor{maxWidth: maxWidth, maxHeight: maxHeight, maxPixels: maxPixels}
}

func (p *Processor) Prepare(data []byte) (*Image, error) {
	format, err := common.DetectImageFormat(data)
	if err != nil {
		return nil, err
	}

	// read the header first so a small file cannot claim a huge canvas
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.NewError(common.ErrInvalidInput, "Image could not be decoded")
	}
	if int64(cfg.Width)*int64(cfg.Height) > p.maxPixels {
		return nil, common.NewError(common.ErrInvalidInput,
			fmt.Sprintf("Image dimensions %dx%d are too large", cfg.Width, cfg.Height))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, common.NewError(common.ErrInvalidInput, "Image could not be decoded")
	}

	b := img.Bounds()
	if b.Dx() > p.maxWidth || b.Dy() > p.maxHeight {
		img = imaging.Fit(img, p.maxWidth, p.maxHeight, imaging.Lanczos)
	}

	out := &Image{ContentType: "image/jpeg", Ext: ".jpg"}
	var buf bytes.Buffer
	if format == common.ImageFormatPNG {
		out.ContentType, out.Ext = "image/png", ".png"
		err = imaging.Encode(&buf, img, imaging.PNG)
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90))
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	out.Data = buf.Bytes()
	out.Width = img.Bounds().Dx()
	out.Height = img.Bounds().Dy()
	return out, nil
}
