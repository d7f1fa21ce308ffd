package application

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
)

// PatchService applies fixes to a file tree. Fixes for one file are applied
// in a single read-modify-write; distinct files are patched in parallel.
type PatchService struct {
	engine      *patch.Engine
	concurrency int
	dryRun      bool
}

func NewPatchService(engine *patch.Engine, concurrency int) *PatchService {
	if engine == nil {
		engine = patch.NewEngine()
	}
	if concurrency <= 0 {
		concurrency = domain.DefaultConcurrency
	}
	return &PatchService{engine: engine, concurrency: concurrency}
}

// DryRun returns a copy of s that reports outcomes without writing files.
// FilesWritten then counts the files that would change.
func (s *PatchService) DryRun() *PatchService {
	c := *s
	c.dryRun = true
	return &c
}

type fileGroup struct {
	path    string
	indices []int
}

// Apply patches fixes under root. Applied flags are written back into fixes.
// Outcomes are grouped by file in first-seen order.
func (s *PatchService) Apply(ctx context.Context, root string, fixes []domain.Fix) (*domain.ApplyReport, error) {
	groups := groupByFile(fixes)
	reports := make([]domain.ApplyReport, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.applyFile(gctx, root, grp, fixes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("applying patches: %w", err)
	}

	total := &domain.ApplyReport{Details: []domain.PatchOutcome{}}
	for i := range reports {
		total.Merge(&reports[i])
	}
	return total, nil
}

// applyFile owns fixes[grp.indices]; no other goroutine touches them.
func (s *PatchService) applyFile(ctx context.Context, root string, grp fileGroup, fixes []domain.Fix) domain.ApplyReport {
	var report domain.ApplyReport

	fail := func(reason string) domain.ApplyReport {
		for _, idx := range grp.indices {
			fixes[idx].Applied = false
			report.Add(domain.PatchOutcome{
				FixID:    fixes[idx].IssueID,
				FilePath: fixes[idx].FilePath,
				Status:   domain.PatchFailed,
				Reason:   reason,
			})
		}
		return report
	}

	abs, err := SafeJoin(root, grp.path)
	if err != nil {
		slog.WarnContext(ctx, "rejecting patch outside working tree", "file", grp.path)
		return fail(domain.ReasonInvalidPath)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fail(domain.ReasonFileNotFound)
	}
	if err != nil {
		slog.WarnContext(ctx, "stat failed", "file", grp.path, "error", err)
		return fail(domain.ReasonFileError)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		slog.WarnContext(ctx, "read failed", "file", grp.path, "error", err)
		return fail(domain.ReasonFileError)
	}

	local := make([]domain.Fix, len(grp.indices))
	for j, idx := range grp.indices {
		local[j] = fixes[idx]
	}
	content, outcomes := s.engine.ApplyFixes(string(data), local)

	if content != string(data) && !s.dryRun {
		if err := os.WriteFile(abs, []byte(content), info.Mode().Perm()); err != nil {
			slog.WarnContext(ctx, "write failed", "file", grp.path, "error", err)
			return fail(domain.ReasonFileError)
		}
	}
	if content != string(data) {
		report.FilesWritten = 1
	}

	for j, idx := range grp.indices {
		fixes[idx].Applied = local[j].Applied
		report.Add(outcomes[j])
	}
	return report
}

func groupByFile(fixes []domain.Fix) []fileGroup {
	var groups []fileGroup
	pos := make(map[string]int)
	for i, f := range fixes {
		p, ok := pos[f.FilePath]
		if !ok {
			p = len(groups)
			pos[f.FilePath] = p
			groups = append(groups, fileGroup{path: f.FilePath})
		}
		groups[p].indices = append(groups[p].indices, i)
	}
	return groups
}

// SafeJoin joins a slash-separated relative path onto root and rejects
// anything that would resolve outside it.
func SafeJoin(root, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") {
		return "", fmt.Errorf("%q: %w", rel, domain.ErrUnsafePath)
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	within, err := filepath.Rel(root, joined)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", rel, domain.ErrUnsafePath)
	}
	return joined, nil
}
