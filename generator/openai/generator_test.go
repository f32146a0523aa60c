package openai

import (
	"testing"

	"github.com/lyaesley/ai-embedded/generator"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest(t *testing.T) {
	g := &openAIGenerator{options: generator.NewOptions(
		generator.WithModel("gpt-4o-mini"),
		generator.WithTemperature(0.7),
	)}

	msgs := []generator.Message{
		{Role: generator.RoleSystem, Content: "be brief"},
		{Role: generator.RoleUser, Content: "hello"},
	}

	t.Run("defaults come from the constructor options", func(t *testing.T) {
		req := g.request(msgs)

		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.7, float64(req.Temperature), 1e-6)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)
	})

	t.Run("per-call options override model and temperature", func(t *testing.T) {
		req := g.request(msgs,
			generator.WithCallModel("gpt-4o"),
			generator.WithCallTemperature(0.1),
		)

		assert.Equal(t, "gpt-4o", req.Model)
		assert.InDelta(t, 0.1, float64(req.Temperature), 1e-6)
	})

	t.Run("a zero per-call temperature still overrides", func(t *testing.T) {
		req := g.request(msgs, generator.WithCallTemperature(0))

		assert.InDelta(t, 0.0, float64(req.Temperature), 1e-6)
	})
}

func TestImageSize(t *testing.T) {
	assert.Equal(t, openai.CreateImageSize1024x1024, imageSize(1024, 1024))
	assert.Equal(t, openai.CreateImageSize512x512, imageSize(512, 768))
	assert.Equal(t, openai.CreateImageSize256x256, imageSize(100, 100))
}
