package application

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/logger"
)

// DispatchResult is the fan-in of one routing pass.
type DispatchResult struct {
	Fixes []domain.Fix
	// Dropped counts defects whose category has no remediator.
	Dropped int
}

// Router partitions defects by category and runs each category's remediator
// concurrently. Fixes are collected in POUR order regardless of completion order.
type Router struct {
	remediators map[domain.Category]domain.Remediator
}

// NewRouter resolves the category table once. A later remediator for the
// same category replaces an earlier one.
func NewRouter(remediators ...domain.Remediator) *Router {
	table := make(map[domain.Category]domain.Remediator, len(remediators))
	for _, r := range remediators {
		table[r.Category()] = r
	}
	return &Router{remediators: table}
}

// Dispatch routes defects to their remediators.
func (r *Router) Dispatch(ctx context.Context, defects []domain.Defect) (*DispatchResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pourfix.router"})

	buckets := make(map[domain.Category][]domain.Defect)
	result := &DispatchResult{}
	for _, d := range defects {
		if _, ok := r.remediators[d.Category]; !ok {
			slog.WarnContext(ctx, "dropping defect with unroutable category",
				"defect_id", d.ID, "category", d.Category, "file", d.FilePath)
			result.Dropped++
			continue
		}
		buckets[d.Category] = append(buckets[d.Category], d)
	}

	slots := make([][]domain.Fix, len(domain.Categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range domain.Categories {
		bucket := buckets[cat]
		if len(bucket) == 0 {
			continue
		}
		rem := r.remediators[cat]
		g.Go(func() error {
			fixes, err := rem.FixIssues(gctx, bucket)
			if err != nil {
				return fmt.Errorf("%s remediation failed: %w", cat, err)
			}
			slots[i] = fixes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, fixes := range slots {
		result.Fixes = append(result.Fixes, fixes...)
	}
	slog.InfoContext(ctx, "dispatch complete",
		"defects", len(defects), "fixes", len(result.Fixes), "dropped", result.Dropped)
	return result, nil
}
