package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/repolens/backend/pkg/graph"
	"github.com/repolens/backend/pkg/loader"
	"github.com/repolens/backend/pkg/logger"
	"github.com/repolens/backend/pkg/store"

	"github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

// ExtractJob is the payload on the extract queue. Either Text is set, or
// DocumentURLs names the sources to fetch and concatenate.
type ExtractJob struct {
	CaseID       string   `json:"case_id"`
	Text         string   `json:"text,omitempty"`
	DocumentURLs []string `json:"document_urls,omitempty"`
	Source       string   `json:"source,omitempty"`
}

// PublishExtract enqueues an extraction job.
func PublishExtract(ch *amqp091.Channel, job ExtractJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal extract job: %w", err)
	}
	return PublishFIFO(ch, ExtractQueue, data)
}

// ProcessExtract handles one extraction job: resolve the document text,
// run the extraction pipeline and overwrite the case's editable
// snapshot. Document URLs are fetched in parallel; one failed fetch
// fails the whole job so the retry path re-runs it completely.
func ProcessExtract(
	ctx context.Context,
	graphStore store.GraphStore,
	docLoader *loader.DocumentLoader,
	body []byte,
) error {
	var job ExtractJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("failed to decode extract job: %w", err)
	}
	if job.CaseID == "" {
		return fmt.Errorf("extract job without case id")
	}

	text := job.Text
	if text == "" && len(job.DocumentURLs) > 0 {
		parts := make([]string, len(job.DocumentURLs))
		g, gctx := errgroup.WithContext(ctx)
		for i, url := range job.DocumentURLs {
			g.Go(func() error {
				fetched, err := docLoader.FetchText(gctx, url)
				if err != nil {
					return fmt.Errorf("failed to fetch %s: %w", url, err)
				}
				parts[i] = fetched
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		text = strings.Join(parts, "\n\n")
	}
	if text == "" {
		seed, err := graphStore.LoadSeedText(ctx, job.CaseID)
		if err != nil {
			return fmt.Errorf("extract job has no content and no seed: %w", err)
		}
		text = seed
	}

	source := job.Source
	if source == "" {
		source = "extraction"
	}

	result := graph.Build(text, graph.WithSource(source))
	if err := graphStore.Save(ctx, job.CaseID, result, nil); err != nil {
		return fmt.Errorf("failed to save extracted graph: %w", err)
	}

	logger.Info("Extraction job finished",
		"case_id", job.CaseID,
		"nodes", len(result.Nodes),
		"edges", len(result.Edges),
		"sentences", result.Meta.SentenceCount,
	)
	return nil
}
