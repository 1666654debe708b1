package common

import (
	"github.com/gabriel-vasile/mimetype"
)

// ImageFormat is an accepted story image encoding.
type ImageFormat string

const (
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatGIF  ImageFormat = "gif"
	ImageFormatBMP  ImageFormat = "bmp"
	ImageFormatTIFF ImageFormat = "tiff"
)

var imageFormatsByMIME = map[string]ImageFormat{
	"image/jpeg": ImageFormatJPEG,
	"image/png":  ImageFormatPNG,
	"image/gif":  ImageFormatGIF,
	"image/bmp":  ImageFormatBMP,
	"image/tiff": ImageFormatTIFF,
}

// String returns the string representation
func (f ImageFormat) String() string {
	return string(f)
}

func (f ImageFormat) IsValid() bool {
	for _, known := range imageFormatsByMIME {
		if f == known {
			return true
		}
	}
	return false
}

// DetectImageFormat sniffs data and reports the image format. Anything that
// is not a decodable image type is rejected with ErrInvalidInput.
func DetectImageFormat(data []byte) (ImageFormat, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if format, ok := imageFormatsByMIME[m.String()]; ok {
			return format, nil
		}
	}
	return "", NewError(ErrInvalidInput, "Unsupported image type: "+mt.String())
}
