package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Category labels reported by OpenAIModel.
const (
	LabelInsult         = "insult"
	LabelThreat         = "threat"
	LabelObscene        = "obscene"
	LabelIdentityAttack = "identity_attack"
	LabelSexualExplicit = "sexual_explicit"
	LabelSevereToxicity = "severe_toxicity"
	LabelSelfHarm       = "self_harm"
)

type moderationAPI interface {
	Moderations(ctx context.Context, request openai.ModerationRequest) (openai.ModerationResponse, error)
}

// OpenAIModel scores text with an OpenAI-compatible moderation endpoint.
type OpenAIModel struct {
	client moderationAPI
	model  string
}

// NewOpenAILoader returns a ModelLoader for the moderation endpoint. Without
// an API key every load fails, which the Classifier turns into fail-open.
func NewOpenAILoader(apiKey, baseURL, model string) ModelLoader {
	return func(ctx context.Context) (Model, error) {
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		return &OpenAIModel{
			client: openai.NewClientWithConfig(cfg),
			model:  model,
		}, nil
	}
}

func (m *OpenAIModel) Classify(ctx context.Context, texts []string) ([][]Prediction, error) {
	out := make([][]Prediction, 0, len(texts))
	for _, text := range texts {
		resp, err := m.client.Moderations(ctx, openai.ModerationRequest{
			Input: text,
			Model: m.model,
		})
		if err != nil {
			return nil, fmt.Errorf("moderations: %w", err)
		}
		if len(resp.Results) == 0 {
			return nil, errors.New("moderations: no results")
		}
		out = append(out, predictionsFromScores(resp.Results[0].CategoryScores))
	}
	return out, nil
}

// predictionsFromScores folds the endpoint's categories into our labels,
// keeping the highest score per label.
func predictionsFromScores(s openai.ResultCategoryScores) []Prediction {
	scores := []struct {
		label string
		score float64
	}{
		{LabelInsult, float64(s.Harassment)},
		{LabelThreat, float64(s.HarassmentThreatening)},
		{LabelThreat, float64(s.HateThreatening)},
		{LabelThreat, float64(s.Violence)},
		{LabelIdentityAttack, float64(s.Hate)},
		{LabelObscene, float64(s.Sexual)},
		{LabelSexualExplicit, float64(s.SexualMinors)},
		{LabelSevereToxicity, float64(s.ViolenceGraphic)},
		{LabelSelfHarm, float64(s.SelfHarm)},
		{LabelSelfHarm, float64(s.SelfHarmIntent)},
		{LabelSelfHarm, float64(s.SelfHarmInstructions)},
	}

	byLabel := make(map[string]int)
	var preds []Prediction
	for _, sc := range scores {
		if i, ok := byLabel[sc.label]; ok {
			if sc.score > preds[i].Probability {
				preds[i].Probability = sc.score
			}
			continue
		}
		byLabel[sc.label] = len(preds)
		preds = append(preds, Prediction{Label: sc.label, Probability: sc.score})
	}
	return preds
}
