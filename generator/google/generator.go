package google

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lyaesley/ai-embedded/generator"
	"google.golang.org/api/iterator"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (string, error) {
	model, last := g.prepare(msgs, opts...)

	rsp, err := model.GenerateContent(ctx, genai.Text(last))
	if err != nil {
		return "", err
	}

	text := flatten(rsp)
	if len(text) == 0 {
		return "", errors.New("no response from Google")
	}

	return text, nil
}

func (g *googleGenerator) Stream(ctx context.Context, msgs []generator.Message, opts ...generator.CallOption) (generator.Stream, error) {
	model, last := g.prepare(msgs, opts...)

	iter := model.GenerateContentStream(ctx, genai.Text(last))

	return &googleStream{iter: iter}, nil
}

// prepare maps the role-structured request onto the genai model: system
// messages become the system instruction, the rest is flattened into a
// single turn with the trailing user message last.
func (g *googleGenerator) prepare(msgs []generator.Message, opts ...generator.CallOption) (*genai.GenerativeModel, string) {
	options := generator.NewCallOptions(opts...)

	name := g.options.Model
	if len(options.Model) > 0 {
		name = options.Model
	}

	temperature := g.options.Temperature
	if options.Temperature != nil {
		temperature = *options.Temperature
	}

	model := g.client.GenerativeModel(name)
	model.SetTemperature(float32(temperature))

	var system []string
	var history strings.Builder
	var last string

	for i, msg := range msgs {
		switch {
		case msg.Role == generator.RoleSystem:
			system = append(system, msg.Content)
		case i == len(msgs)-1:
			last = msg.Content
		default:
			history.WriteString("[" + msg.Role + "]: " + msg.Content + "\n")
		}
	}

	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n"))},
		}
	}

	if history.Len() > 0 {
		last = history.String() + "\n" + last
	}

	return model, last
}

func flatten(rsp *genai.GenerateContentResponse) string {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String()
}

type googleStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *googleStream) Recv() (string, error) {
	for {
		rsp, err := s.iter.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}

		if text := flatten(rsp); len(text) > 0 {
			return text, nil
		}
	}
}

func (s *googleStream) Close() error {
	return nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(err)
	}

	g.client = client

	return g
}
