package common

import (
	"context"
)

// ImageStore persists story images and hands back the URL clients load them from.
type ImageStore interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// CategoryCache caches the distinct categories in use.
type CategoryCache interface {
	Categories(ctx context.Context) ([]string, bool, error)
	SetCategories(ctx context.Context, categories []string) error
	Invalidate(ctx context.Context) error
}
