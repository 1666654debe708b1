package moderation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) Classify(ctx context.Context, texts []string) ([][]Prediction, error) {
	args := m.Called(ctx, texts)
	preds, _ := args.Get(0).([][]Prediction)
	return preds, args.Error(1)
}

func TestClassifier_IsToxic(t *testing.T) {
	tests := []struct {
		name  string
		preds []Prediction
		want  bool
	}{
		{name: "above threshold", preds: []Prediction{{LabelInsult, 0.2}, {LabelThreat, 0.95}}, want: true},
		{name: "at threshold", preds: []Prediction{{LabelInsult, 0.9}}, want: false},
		{name: "below threshold", preds: []Prediction{{LabelObscene, 0.1}}, want: false},
		{name: "no predictions", preds: nil, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model := new(mockModel)
			model.On("Classify", mock.Anything, []string{"some text"}).
				Return([][]Prediction{tc.preds}, nil).Once()

			c := NewClassifier(func(context.Context) (Model, error) { return model, nil }, 0.9, zaptest.NewLogger(t))
			assert.Equal(t, tc.want, c.IsToxic(context.Background(), "some text"))
			model.AssertExpectations(t)
		})
	}
}

func TestClassifier_FailsOpen(t *testing.T) {
	t.Run("load error", func(t *testing.T) {
		c := NewClassifier(func(context.Context) (Model, error) {
			return nil, errors.New("no weights")
		}, 0.9, zaptest.NewLogger(t))
		assert.False(t, c.IsToxic(context.Background(), "anything"))
	})

	t.Run("inference error", func(t *testing.T) {
		model := new(mockModel)
		model.On("Classify", mock.Anything, mock.Anything).Return(nil, errors.New("backend down"))
		c := NewClassifier(func(context.Context) (Model, error) { return model, nil }, 0.9, zaptest.NewLogger(t))
		assert.False(t, c.IsToxic(context.Background(), "anything"))
	})

	t.Run("no api key", func(t *testing.T) {
		c := NewClassifier(NewOpenAILoader("", "", "omni-moderation-latest"), 0.9, zaptest.NewLogger(t))
		assert.False(t, c.IsToxic(context.Background(), "anything"))
	})
}

func TestClassifier_LoadsOnceUnderConcurrency(t *testing.T) {
	var loads int32
	release := make(chan struct{})
	model := new(mockModel)
	model.On("Classify", mock.Anything, mock.Anything).Return([][]Prediction{{}}, nil)

	c := NewClassifier(func(context.Context) (Model, error) {
		atomic.AddInt32(&loads, 1)
		<-release
		return model, nil
	}, 0.9, zaptest.NewLogger(t))

	const callers = 20
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			c.IsToxic(context.Background(), "hi")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	c.IsToxic(context.Background(), "again")
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestClassifier_RetriesFailedLoad(t *testing.T) {
	var loads int32
	model := new(mockModel)
	c := NewClassifier(func(context.Context) (Model, error) {
		if atomic.AddInt32(&loads, 1) == 1 {
			return nil, errors.New("transient")
		}
		return model, nil
	}, 0.9, zaptest.NewLogger(t))

	_, err := c.Model(context.Background())
	require.Error(t, err)

	got, err := c.Model(context.Background())
	require.NoError(t, err)
	assert.Same(t, model, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&loads))
}

type fakeModerationAPI struct {
	resp openai.ModerationResponse
	err  error
	reqs []openai.ModerationRequest
}

func (f *fakeModerationAPI) Moderations(ctx context.Context, req openai.ModerationRequest) (openai.ModerationResponse, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func TestOpenAIModel_Classify(t *testing.T) {
	api := &fakeModerationAPI{resp: openai.ModerationResponse{
		Results: []openai.Result{{CategoryScores: openai.ResultCategoryScores{
			Harassment:      0.3,
			Violence:        0.97,
			HateThreatening: 0.4,
		}}},
	}}
	m := &OpenAIModel{client: api, model: "omni-moderation-latest"}

	out, err := m.Classify(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, api.reqs, 1)
	assert.Equal(t, "text", api.reqs[0].Input)

	scores := map[string]float64{}
	for _, p := range out[0] {
		scores[p.Label] = p.Probability
	}
	assert.InDelta(t, 0.97, scores[LabelThreat], 1e-6)
	assert.InDelta(t, 0.3, scores[LabelInsult], 1e-6)
	assert.Contains(t, scores, LabelSelfHarm)
}

func TestOpenAIModel_Errors(t *testing.T) {
	m := &OpenAIModel{client: &fakeModerationAPI{err: errors.New("429")}}
	_, err := m.Classify(context.Background(), []string{"x"})
	assert.Error(t, err)

	m = &OpenAIModel{client: &fakeModerationAPI{}}
	_, err = m.Classify(context.Background(), []string{"x"})
	assert.Error(t, err)
}
