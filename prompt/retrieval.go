package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/lyaesley/ai-embedded/knowledgestore"
)

type retrievalAdvisor struct {
	store     knowledgestore.Store
	template  Template
	topK      int
	threshold float64
}

func (a *retrievalAdvisor) Name() string {
	return "retrieval"
}

func (a *retrievalAdvisor) Advise(ctx context.Context, req *Request) error {
	results, err := a.store.Query(
		ctx,
		req.UserText,
		knowledgestore.WithTopK(a.topK),
		knowledgestore.WithThreshold(a.threshold),
	)
	if err != nil {
		return err
	}

	req.Retrieved = results

	if len(results) > 0 {
		labels := make([]string, 0, len(results))
		for i, res := range results {
			labels = append(labels, citationLabel(i, res.Metadata))
		}
		req.Citations = labels
		req.Augmented = req.UserText + "\n\n[Sources: " + strings.Join(labels, ", ") + "]"
	}

	passages := make([]string, 0, len(results))
	for _, res := range results {
		passages = append(passages, res.Text)
	}

	system, err := a.template.Render(map[string]any{
		"query":   req.UserText,
		"context": strings.Join(passages, "\n\n"),
	})
	if err != nil {
		return err
	}

	req.System = system

	return nil
}

// citationLabel builds one short human-readable label per retrieved
// chunk, in retrieval order.
func citationLabel(i int, metadata map[string]any) string {
	name, detail := "untitled", ""

	switch {
	case metadata["title"] != nil:
		name = fmt.Sprint(metadata["title"])
		if metadata["section"] != nil {
			detail = fmt.Sprint(metadata["section"])
		}
	case metadata["docId"] != nil:
		name = fmt.Sprint(metadata["docId"])
		if metadata["version"] != nil {
			detail = fmt.Sprint(metadata["version"])
		}
	case metadata["filename"] != nil:
		name = fmt.Sprint(metadata["filename"])
	}

	if len(detail) > 0 {
		return fmt.Sprintf("Source %d: %s (%s)", i+1, name, detail)
	}

	return fmt.Sprintf("Source %d: %s", i+1, name)
}

func NewRetrievalAdvisor(store knowledgestore.Store, template Template, topK int, threshold float64) Advisor {
	if topK < 1 {
		topK = knowledgestore.DefaultTopK
	}

	return &retrievalAdvisor{
		store:     store,
		template:  template,
		topK:      topK,
		threshold: threshold,
	}
}
