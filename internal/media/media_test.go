package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"anonboard/internal/common"
	"anonboard/internal/dbmongo"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func TestProcessor_Prepare(t *testing.T) {
	p := NewProcessor(100, 200, 0)

	t.Run("png stays png", func(t *testing.T) {
		img, err := p.Prepare(encodePNG(t, 40, 30))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, ".png", img.Ext)
		assert.Equal(t, 40, img.Width)
		assert.Equal(t, 30, img.Height)
	})

	t.Run("large jpeg is fitted", func(t *testing.T) {
		img, err := p.Prepare(encodeJPEG(t, 400, 200))
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.ContentType)
		assert.Equal(t, 100, img.Width)
		assert.Equal(t, 50, img.Height)

		cfg, err := jpeg.DecodeConfig(bytes.NewReader(img.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := p.Prepare([]byte("%PDF-1.7 definitely not a picture"))
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("truncated image", func(t *testing.T) {
		data := encodePNG(t, 40, 30)
		_, err := p.Prepare(data[:len(data)/2])
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestProcessor_PixelBudget(t *testing.T) {
	p := NewProcessor(100, 200, 10_000)

	_, err := p.Prepare(encodePNG(t, 200, 100))
	require.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "200x100")

	img, err := p.Prepare(encodePNG(t, 100, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Width)
}

func TestProcessor_LargeCanvasRejectedBeforeDecode(t *testing.T) {
	// a flat 8000x6000 PNG compresses to well under the upload cap
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8000, 6000))))
	require.Less(t, buf.Len(), 5<<20)

	_, err := NewProcessor(1080, 1920, DefaultMaxPixels).Prepare(buf.Bytes())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestS3PublicURL(t *testing.T) {
	assert.Equal(t, "https://stories.s3.example.com", s3PublicURL("s3.example.com", "stories", "", true))
	assert.Equal(t, "http://stories.localhost:9000", s3PublicURL("localhost:9000", "stories", "", false))
	assert.Equal(t, "https://cdn.example.com/stories", s3PublicURL("s3.example.com", "stories", "https://cdn.example.com/stories/", true))
}

func TestS3Store_ObjectKey(t *testing.T) {
	s := &S3Store{bucket: "stories", publicURL: "https://cdn.example.com"}

	key, ok := s.objectKey("https://cdn.example.com/abc.jpg")
	assert.True(t, ok)
	assert.Equal(t, "abc.jpg", key)

	_, ok = s.objectKey("https://elsewhere.example.com/abc.jpg")
	assert.False(t, ok)

	_, ok = s.objectKey("https://cdn.example.com/")
	assert.False(t, ok)
}

type fakeFiles struct {
	files map[string]string
}

func (f *fakeFiles) DownloadFile(ctx context.Context, id string) (io.ReadCloser, *dbmongo.MediaFile, error) {
	content, ok := f.files[id]
	if !ok {
		return nil, nil, common.NewError(common.ErrNotFound, "File not found")
	}
	return io.NopCloser(strings.NewReader(content)), &dbmongo.MediaFile{
		ID: id, Filename: id + ".png", Size: int64(len(content)),
	}, nil
}

func TestHTTPServer_ServeFile(t *testing.T) {
	srv := NewHTTPServer(&fakeFiles{files: map[string]string{"abc": "pngbytes"}}, zaptest.NewLogger(t))
	r := mux.NewRouter()
	srv.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/abc", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "pngbytes", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
