package story

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/media"
)

type Service interface {
	Upload(ctx context.Context, text string, image []byte) (*Story, error)
	List(ctx context.Context) ([]Story, error)
	React(ctx context.Context, storyID, reaction string) (*Story, error)
	CleanupExpired(ctx context.Context) (int, error)
}

// ImageProcessor turns raw upload bytes into a stored-ready image.
type ImageProcessor interface {
	Prepare(data []byte) (*media.Image, error)
}

type Options struct {
	MaxImageBytes int64
	// TTL of zero keeps stories forever.
	TTL time.Duration
}

type service struct {
	repo      Repository
	images    common.ImageStore
	processor ImageProcessor
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, images common.ImageStore, processor ImageProcessor, opts Options, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		images:    images,
		processor: processor,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) Upload(ctx context.Context, text string, image []byte) (*Story, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewError(common.ErrInvalidInput, "Story text is required")
	}

	story := &Story{Text: text, Timestamp: s.now()}

	if len(image) > 0 {
		if s.opts.MaxImageBytes > 0 && int64(len(image)) > s.opts.MaxImageBytes {
			return nil, common.NewError(common.ErrInvalidInput,
				fmt.Sprintf("Image is too large (max %d bytes)", s.opts.MaxImageBytes))
		}

		img, err := s.processor.Prepare(image)
		if err != nil {
			return nil, err
		}

		url, err := s.images.Save(ctx, uuid.NewString()+img.Ext, img.ContentType, img.Data)
		if err != nil {
			return nil, fmt.Errorf("save story image: %w", err)
		}
		story.ImageURL = url
	}

	if err := s.repo.Insert(ctx, story); err != nil {
		if story.ImageURL != "" {
			if derr := s.images.Delete(ctx, story.ImageURL); derr != nil {
				s.logger.Warn("Failed to remove orphaned story image", zap.String("url", story.ImageURL), zap.Error(derr))
			}
		}
		return nil, err
	}
	return story, nil
}

func (s *service) List(ctx context.Context) ([]Story, error) {
	return s.repo.List(ctx)
}

func (s *service) React(ctx context.Context, storyID, reaction string) (*Story, error) {
	r, err := ParseReaction(reaction)
	if err != nil {
		return nil, err
	}
	return s.repo.IncReaction(ctx, storyID, r)
}

// CleanupExpired deletes stories older than the TTL and their images. It
// returns how many stories were removed.
func (s *service) CleanupExpired(ctx context.Context) (int, error) {
	if s.opts.TTL <= 0 {
		return 0, nil
	}

	expired, err := s.repo.ListExpired(ctx, s.now().Add(-s.opts.TTL))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, st := range expired {
		if st.ImageURL != "" {
			if err := s.images.Delete(ctx, st.ImageURL); err != nil {
				s.logger.Warn("Failed to delete story image", zap.String("storyId", st.ID.Hex()), zap.Error(err))
			}
		}
		if err := s.repo.Delete(ctx, st.ID); err != nil {
			s.logger.Warn("Failed to delete expired story", zap.String("storyId", st.ID.Hex()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// StartCleaner runs CleanupExpired every interval until ctx is cancelled.
func StartCleaner(ctx context.Context, svc Service, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.CleanupExpired(ctx)
			if err != nil {
				logger.Error("Expired story cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Removed expired stories", zap.Int("count", n))
			}
		}
	}
}
