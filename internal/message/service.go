package message

import (
	"context"

	"go.uber.org/zap"

	"anonboard/internal/common"
)

//go:generate mockgen -source=service.go -destination=mock_service.go -package=message

type Service interface {
	List(ctx context.Context, category string) ([]Message, error)
	Categories(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, m *Message) error
	AddReply(ctx context.Context, messageID string, reply *Reply) error
	VoteMessage(ctx context.Context, id, vote string) (*Message, error)
	VoteReply(ctx context.Context, id, replyID, vote string) (*Reply, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	cache  common.CategoryCache
	logger *zap.Logger
}

// NewService builds the message service. cache may be nil.
func NewService(repo Repository, cache common.CategoryCache, logger *zap.Logger) Service {
	return &service{repo: repo, cache: cache, logger: logger}
}

func (s *service) List(ctx context.Context, category string) ([]Message, error) {
	return s.repo.List(ctx, category)
}

// Categories serves from the cache when it can. Cache errors fall through to
// the repository.
func (s *service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Categories(ctx)
		if err != nil {
			s.logger.Warn("Category cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories); err != nil {
			s.logger.Warn("Category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (s *service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *service) Create(ctx context.Context, m *Message) error {
	if m.User == "" {
		m.User = DefaultUser
	}
	if err := s.repo.Insert(ctx, m); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *service) AddReply(ctx context.Context, messageID string, reply *Reply) error {
	if reply.User == "" {
		reply.User = DefaultUser
	}
	return s.repo.PushReply(ctx, messageID, reply)
}

func (s *service) VoteMessage(ctx context.Context, id, vote string) (*Message, error) {
	v, err := ParseVote(vote)
	if err != nil {
		return nil, err
	}
	return s.repo.IncVote(ctx, id, v)
}

func (s *service) VoteReply(ctx context.Context, id, replyID, vote string) (*Reply, error) {
	v, err := ParseVote(vote)
	if err != nil {
		return nil, err
	}
	return s.repo.IncReplyVote(ctx, id, replyID, v)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *service) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
}
