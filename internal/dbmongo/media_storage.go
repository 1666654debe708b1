package dbmongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"anonboard/internal/common"
)

// MediaPathPrefix is where the media handler serves GridFS files from.
const MediaPathPrefix = "/media/"

// MediaStorage keeps story images in GridFS and implements common.ImageStore.
type MediaStorage struct {
	gridFS *gridfs.Bucket
}

func NewMediaStorage(mongoClient *MongoClient) *MediaStorage {
	return &MediaStorage{
		gridFS: mongoClient.GridFS,
	}
}

type MediaFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Save uploads data and returns the URL it is served under.
func (ms *MediaStorage) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	metadata := bson.M{
		"content_type": contentType,
		"uploaded_at":  time.Now(),
	}

	opts := options.GridFSUpload().SetMetadata(metadata)
	fileID, err := ms.gridFS.UploadFromStream(name, bytes.NewReader(data), opts)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return MediaPathPrefix + fileID.Hex(), nil
}

// Delete removes the file behind a URL returned by Save.
func (ms *MediaStorage) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, MediaPathPrefix) {
		return fmt.Errorf("not a gridfs media url: %q", url)
	}
	return ms.DeleteFile(ctx, strings.TrimPrefix(url, MediaPathPrefix))
}

func (ms *MediaStorage) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *MediaFile, error) {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, nil, common.NewError(common.ErrNotFound, "File not found")
	}

	stream, err := ms.gridFS.OpenDownloadStream(objectID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, nil, common.NewError(common.ErrNotFound, "File not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("download failed: %w", err)
	}

	fileInfo := stream.GetFile()
	var metadata bson.M
	if fileInfo.Metadata != nil {
		_ = bson.Unmarshal(fileInfo.Metadata, &metadata)
	}

	return stream, &MediaFile{
		ID:          fileID,
		Filename:    fileInfo.Name,
		Size:        fileInfo.Length,
		ContentType: getStringFromMap(metadata, "content_type"),
		UploadedAt:  fileInfo.UploadDate,
	}, nil
}

func (ms *MediaStorage) DeleteFile(ctx context.Context, fileID string) error {
	objectID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return fmt.Errorf("invalid file ID: %w", err)
	}
	if err := ms.gridFS.Delete(objectID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return common.NewError(common.ErrNotFound, "File not found")
		}
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

func getStringFromMap(m bson.M, key string) string {
	if m == nil {
		return ""
	}
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
