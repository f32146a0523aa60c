package openai

import (
	"context"
	"errors"

	"github.com/lyaesley/ai-embedded/generator"
	"github.com/sashabaranov/go-openai"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (string, error) {
	req := g.request(msgs, opts...)

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) Stream(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (generator.Stream, error) {
	req := g.request(msgs, opts...)

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, err
	}

	return &openAIStream{stream: stream}, nil
}

// GenerateImages returns URLs for generated images. Diagnostic surface,
// not part of the conversational turn.
func (g *openAIGenerator) GenerateImages(ctx context.Context, prompt string, count int, height int, width int) ([]string, error) {
	rsp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:  prompt,
		N:       count,
		Size:    imageSize(height, width),
		Quality: openai.CreateImageQualityHD,
	})
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(rsp.Data))
	for _, img := range rsp.Data {
		urls = append(urls, img.URL)
	}

	return urls, nil
}

func (g *openAIGenerator) request(msgs []generator.Message, opts ...generator.CallOption) openai.ChatCompletionRequest {
	options := generator.NewCallOptions(opts...)

	model := g.options.Model
	if len(options.Model) > 0 {
		model = options.Model
	}

	temperature := g.options.Temperature
	if options.Temperature != nil {
		temperature = *options.Temperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, msg := range msgs {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(temperature),
		Messages:    messages,
	}
}

func imageSize(height int, width int) string {
	switch {
	case height >= 1024 && width >= 1024:
		return openai.CreateImageSize1024x1024
	case height >= 512 && width >= 512:
		return openai.CreateImageSize512x512
	default:
		return openai.CreateImageSize256x256
	}
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	for {
		rsp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}

		if len(rsp.Choices) == 0 {
			continue
		}

		// empty deltas carry no text; skip rather than forward them
		if token := rsp.Choices[0].Delta.Content; len(token) > 0 {
			return token, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	client := openai.NewClient(options.ApiKey)

	g.client = client

	return g
}
