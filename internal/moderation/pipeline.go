package moderation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/message"
)

// MessageStore is the persistence the pipeline writes through.
type MessageStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, m *message.Message) error
	AddReply(ctx context.Context, messageID string, reply *message.Reply) error
}

// Pipeline validates, classifies and stores new messages and replies. A
// rejected submission never reaches the store.
type Pipeline struct {
	messages   *Validator
	replies    *Validator
	classifier ToxicityClassifier
	store      MessageStore
	logger     *zap.Logger

	// Pseudonym names the anonymous author. No collision check is made.
	Pseudonym func() string
}

func NewPipeline(messages, replies *Validator, classifier ToxicityClassifier, store MessageStore, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		messages:   messages,
		replies:    replies,
		classifier: classifier,
		store:      store,
		logger:     logger,
		Pseudonym:  RandomPseudonym,
	}
}

// RandomPseudonym returns "User" followed by four digits in 1000-9999.
func RandomPseudonym() string {
	return fmt.Sprintf("User%d", 1000+rand.IntN(9000))
}

func (p *Pipeline) SubmitMessage(ctx context.Context, text, category string) (*message.Message, error) {
	clean, err := p.messages.Validate(text)
	if err != nil {
		return nil, err
	}

	category = strings.TrimSpace(category)
	if !message.IsValidCategory(category) {
		return nil, common.NewValidationError(common.ReasonInvalidCategory,
			fmt.Sprintf("Category must be one of: %s.", strings.Join(message.Categories, ", ")))
	}

	if p.classifier.IsToxic(ctx, text) {
		p.logger.Info("Rejected toxic message", zap.String("category", category))
		return nil, common.NewError(common.ErrToxicContent, "Your message contains toxic content and cannot be posted.")
	}

	m := &message.Message{
		Text:     clean,
		User:     p.Pseudonym(),
		Category: category,
		Replies:  []message.Reply{},
	}
	if err := p.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *Pipeline) SubmitReply(ctx context.Context, messageID, text string) (*message.Reply, error) {
	clean, err := p.replies.Validate(text)
	if err != nil {
		return nil, err
	}

	exists, err := p.store.Exists(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("look up message: %w", err)
	}
	if !exists {
		return nil, common.NewError(common.ErrNotFound, "Message not found.")
	}

	if p.classifier.IsToxic(ctx, text) {
		p.logger.Info("Rejected toxic reply", zap.String("messageId", messageID))
		return nil, common.NewError(common.ErrToxicContent, "Reply contains toxic content.")
	}

	reply := &message.Reply{
		Text: clean,
		User: p.Pseudonym(),
	}
	if err := p.store.AddReply(ctx, messageID, reply); err != nil {
		return nil, err
	}
	return reply, nil
}
