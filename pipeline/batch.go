package pipeline

import (
	"context"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Document is one input of a batch. Source is read if set, otherwise Path
// is opened.
type Document struct {
	Name   string
	Source io.Reader
	Path   string
}

// BatchResult is the outcome of one document of a batch.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// TranslateBatch translates independent documents with the default settings,
// at most workers at a time. A workers value below 1 means 1.
func TranslateBatch(ctx context.Context, docs []Document, workers int) ([]BatchResult, error) {
	return NewBuilder().WithWorkers(workers).Build().TranslateBatch(ctx, docs)
}

// TranslateBatch translates independent documents in parallel. Results keep
// the order of docs. A failing document only sets the error of its own
// result. The returned error is the context error if the batch was
// cancelled; documents not started by then carry it too.
func (t *Translator) TranslateBatch(ctx context.Context, docs []Document) ([]BatchResult, error) {
	results := make([]BatchResult, len(docs))

	var g errgroup.Group
	g.SetLimit(max(t.workers, 1))

	for i, doc := range docs {
		results[i].Name = doc.Name

		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			results[i].Result, results[i].Err = t.translateDocument(doc)

			return nil
		})
	}

	_ = g.Wait()

	return results, ctx.Err()
}

func (t *Translator) translateDocument(doc Document) (*Result, error) {
	if doc.Source != nil {
		return t.translate(doc.Name, doc.Source)
	}

	if doc.Path == "" {
		return t.translate(doc.Name, nil)
	}

	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, missing(doc.Name, err)
	}
	defer f.Close()

	return t.translate(doc.Name, f)
}
