package media

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/dbmongo"
)

// FileSource opens stored images by id.
type FileSource interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
}

// HTTPServer streams GridFS-backed story images.
type HTTPServer struct {
	files  FileSource
	logger *zap.Logger
}

func NewHTTPServer(files FileSource, logger *zap.Logger) *HTTPServer {
	return &HTTPServer{files: files, logger: logger}
}

func (s *HTTPServer) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	reader, file, err := s.files.DownloadFile(r.Context(), fileID)
	if err != nil {
		common.RespondError(w, s.logger, err, "Failed to load file")
		return
	}
	defer reader.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = contentTypeFromName(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Warn("Error streaming file", zap.String("fileId", fileID), zap.Error(err))
	}
}

func contentTypeFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
