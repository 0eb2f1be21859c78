package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeGenerator struct {
	parts []genai.Part
	resp  *genai.GenerateContentResponse
	err   error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, genai.Text(t))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		UsageMetadata: &genai.UsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 40,
			TotalTokenCount:      160,
		},
	}
}

func newTestClient(t *testing.T, gen *fakeGenerator) *Client {
	c, err := newClient(gen, Config{Model: "gemini-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestGenerateFromVideo_SendsBlobThenPrompt(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(`{"title":`, ` "Soup"}`)}
	c := newTestClient(t, gen)

	text, err := c.GenerateFromVideo(context.Background(), outbound.VideoPrompt{
		MIMEType: "video/mp4",
		Data:     []byte{0x00, 0x01},
		Prompt:   "describe",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"title": "Soup"}`, text)
	require.Len(t, gen.parts, 2)
	assert.Equal(t, genai.Blob{MIMEType: "video/mp4", Data: []byte{0x00, 0x01}}, gen.parts[0])
	assert.Equal(t, genai.Text("describe"), gen.parts[1])
}

func TestGenerateFromVideo_EmptyResponseIsError(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"no candidates": {},
		"blank text":    textResponse("  "),
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, &fakeGenerator{resp: resp})

			_, err := c.GenerateFromVideo(context.Background(), outbound.VideoPrompt{Prompt: "x"})

			assert.True(t, apperrors.Is(err, apperrors.CodeEmptyAIResponse))
		})
	}
}

func TestGenerateFromVideo_ProviderErrorIsWrapped(t *testing.T) {
	cause := errors.New("googleapi: Error 503")
	c := newTestClient(t, &fakeGenerator{err: cause})

	_, err := c.GenerateFromVideo(context.Background(), outbound.VideoPrompt{Prompt: "x"})

	assert.True(t, apperrors.Is(err, apperrors.CodeExternalServiceError))
	assert.ErrorIs(t, err, cause)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{Model: "gemini-test"}, zaptest.NewLogger(t))

	assert.True(t, apperrors.Is(err, apperrors.CodeConfiguration))
}
