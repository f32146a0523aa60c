package anthropic

import (
	"context"
	"errors"
	"io"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/lyaesley/ai-embedded/generator"
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (string, error) {
	req := g.request(msgs, opts...)

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", errors.New("no response from Anthropic")
	}

	return result, nil
}

func (g *anthropicGenerator) Stream(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (generator.Stream, error) {
	req := g.request(msgs, opts...)

	stream := g.client.Messages.NewStreaming(ctx, req)

	return &anthropicStream{stream: stream}, nil
}

func (g *anthropicGenerator) request(msgs []generator.Message, opts ...generator.CallOption) anthropic.MessageNewParams {
	options := generator.NewCallOptions(opts...)

	model := g.options.Model
	if len(options.Model) > 0 {
		model = options.Model
	}

	temperature := g.options.Temperature
	if options.Temperature != nil {
		temperature = *options.Temperature
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, msg := range msgs {
		switch msg.Role {
		case generator.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case generator.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(temperature),
		System:      system,
		Messages:    messages,
	}
}

type anthropicStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
}

func (s *anthropicStream) Recv() (string, error) {
	for s.stream.Next() {
		event := s.stream.Current()

		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}

		if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && len(text.Text) > 0 {
			return text.Text, nil
		}
	}

	if err := s.stream.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	client := anthropic.NewClient(
		anthropicopt.WithAPIKey(options.ApiKey),
	)

	g.client = &client

	return g
}
