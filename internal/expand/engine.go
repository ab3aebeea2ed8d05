package expand

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

// Expand is the top-level entry point: validate `batch` against
// `templateName`'s signature, then recursively expand. The returned leaf
// emissions are concatenated in pattern-list order at every level, so
// output order is deterministic regardless of how siblings are scheduled.
//
// Sibling sub-instances fan out across a bounded worker pool using
// golang.org/x/sync/errgroup. A failing sibling poisons the whole call: the
// errgroup's first error cancels the group and is returned, discarding any
// other leaves already computed in-flight.
func Expand(ctx context.Context, dataset template.Dataset, templateName string, batch *column.Batch, opts validate.Options, maxWorkers int) ([]LeafEmission, error) {
	tmpl, err := resolveTemplate(dataset, templateName)
	if err != nil {
		return nil, err
	}

	res, err := validate.ValidateSignature(tmpl.Signature, batch, opts)
	if err != nil {
		return nil, err
	}
	s := scope{batch: batch, dynamic: res.Dynamic, static: res.Static, uniqueSubsets: res.UniqueSubsets}

	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return expandScope(ctx, dataset, tmpl, s, maxWorkers)
}

func resolveTemplate(dataset template.Dataset, name string) (template.Template, error) {
	if t, ok := dataset.FindByIRI(name); ok {
		return t, nil
	}
	resolved, prefix, ok := dataset.ResolvePrefixed(name)
	if ok {
		if t, found := dataset.FindByIRI(resolved); found {
			return t, nil
		}
		return template.Template{}, &errs.NoTemplateForPrefixError{Prefix: prefix, Resolved: resolved}
	}
	return template.Template{}, &errs.TemplateNotFoundError{Name: name}
}

func expandScope(ctx context.Context, dataset template.Dataset, tmpl template.Template, s scope, maxWorkers int) ([]LeafEmission, error) {
	if tmpl.IsLeaf() {
		leaf, err := createTriples(s)
		if err != nil {
			return nil, err
		}
		return []LeafEmission{leaf}, nil
	}

	n := len(tmpl.PatternList)
	results := make([][]LeafEmission, n)

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxWorkers)

	for i, inst := range tmpl.PatternList {
		i, inst := i, inst
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			childTmpl, err := resolveTemplate(dataset, inst.TemplateName)
			if err != nil {
				return err
			}
			childScope, err := remapInstance(s, inst, childTmpl.Signature)
			if err != nil {
				return err
			}
			leaves, err := expandScope(gctx, dataset, childTmpl, childScope, maxWorkers)
			if err != nil {
				return err
			}
			results[i] = leaves
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []LeafEmission
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
