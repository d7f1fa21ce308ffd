package application

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/classify"
	"github.com/abdidvp/pourfix/internal/domain/plan"
)

// LocalWorkspace is a Workspace that can ingest a directory on disk.
type LocalWorkspace interface {
	domain.Workspace
	IngestDir(ctx context.Context, jobID, src string, excludePaths ...string) (int, error)
}

// LocalDeps wires a LocalService.
type LocalDeps struct {
	Scanner     domain.SourceScanner
	Detector    domain.Detector
	Config      domain.ConfigLoader
	Remediators []domain.Remediator
	Validators  []domain.Validator
	Store       domain.JobStore
	Workspace   LocalWorkspace
	Reports     domain.ReportWriter
	Classifier  *classify.Classifier
	// Cache is optional. When set, Detect reuses results for unchanged trees.
	Cache domain.CacheStore
}

// LocalService runs planning, validation and full jobs against a project
// directory. The project itself is never modified by Run; fixes land in the
// job's working copy.
type LocalService struct {
	deps LocalDeps
}

func NewLocalService(deps LocalDeps) *LocalService {
	return &LocalService{deps: deps}
}

// Config loads the project configuration.
func (s *LocalService) Config(projectPath string) (domain.ProjectConfig, error) {
	cfg, err := s.deps.Config.Load(projectPath)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	return cfg.WithDefaults(), nil
}

// Detect scans the project and returns its deduplicated, non-skipped defects.
func (s *LocalService) Detect(ctx context.Context, projectPath string) ([]domain.Defect, error) {
	cfg, err := s.Config(projectPath)
	if err != nil {
		return nil, err
	}
	scan, err := s.deps.Scanner.Scan(projectPath, cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("scanning: %w", err)
	}

	var configHash string
	var fileHashes map[string]string
	if s.deps.Cache != nil {
		configHash, fileHashes = fingerprint(cfg, scan)
		if cached, err := s.deps.Cache.Load(projectPath); err != nil {
			slog.WarnContext(ctx, "ignoring unreadable detection cache", "error", err)
		} else if cached != nil && !cached.IsInvalidated(configHash, fileHashes) {
			slog.DebugContext(ctx, "detection cache hit", "defects", len(cached.Defects))
			return cached.Defects, nil
		}
	}

	found, err := s.deps.Detector.Detect(ctx, scan.RootPath, scan.Files)
	if err != nil {
		return nil, fmt.Errorf("detecting issues: %w", err)
	}
	defects := domain.DedupDefects(found)
	kept := defects[:0:0]
	for _, d := range defects {
		if !cfg.IsSkippedRule(d.RuleID) {
			kept = append(kept, d)
		}
	}

	if s.deps.Cache != nil {
		err := s.deps.Cache.Save(&domain.DetectionCache{
			ProjectPath: projectPath,
			ConfigHash:  configHash,
			FileHashes:  fileHashes,
			Defects:     kept,
		})
		if err != nil {
			slog.WarnContext(ctx, "saving detection cache", "error", err)
		}
	}
	return kept, nil
}

// fingerprint hashes the effective config and every scanned file.
func fingerprint(cfg domain.ProjectConfig, scan *domain.ScanResult) (string, map[string]string) {
	cfgData, _ := json.Marshal(cfg)
	files := make(map[string]string, len(scan.Files))
	for _, f := range scan.Files {
		data, err := os.ReadFile(filepath.Join(scan.RootPath, filepath.FromSlash(f)))
		if err != nil {
			files[f] = ""
			continue
		}
		files[f] = fmt.Sprintf("%x", sha256.Sum256(data))
	}
	return fmt.Sprintf("%x", sha256.Sum256(cfgData)), files
}

// Plan detects defects and derives a work plan from them.
func (s *LocalService) Plan(ctx context.Context, projectPath string) (*domain.WorkPlan, error) {
	defects, err := s.Detect(ctx, projectPath)
	if err != nil {
		return nil, err
	}
	return plan.Generate(defects), nil
}

// Validate runs the checkers over the project as it is on disk.
func (s *LocalService) Validate(ctx context.Context, projectPath string) (*domain.ValidationReport, error) {
	cfg, err := s.Config(projectPath)
	if err != nil {
		return nil, err
	}
	return NewValidateService(s.deps.Validators, s.deps.Classifier).Validate(ctx, projectPath, cfg)
}

// Run executes a complete job over a copy of the project and returns the
// final report. The fixed tree is at Workspace.FixedRoot(report.JobID).
func (s *LocalService) Run(ctx context.Context, projectPath string, opts RunOptions) (*domain.RunReport, error) {
	cfg, err := s.Config(projectPath)
	if err != nil {
		return nil, err
	}

	jobs := NewJobService(s.deps.Store, nil)
	job, err := jobs.Create(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.deps.Workspace.IngestDir(ctx, job.ID, projectPath, cfg.ExcludePaths...); err != nil {
		_ = jobs.Fail(ctx, job.ID, err)
		return nil, fmt.Errorf("copying project: %w", err)
	}

	coord := NewCoordinator(CoordinatorDeps{
		Store:      s.deps.Store,
		Workspace:  s.deps.Workspace,
		Detector:   s.deps.Detector,
		Router:     NewRouter(s.deps.Remediators...),
		Patcher:    NewPatchService(nil, cfg.Concurrency),
		Validator:  NewValidateService(s.deps.Validators, s.deps.Classifier),
		Reports:    s.deps.Reports,
		Classifier: s.deps.Classifier,
		Config:     cfg,
	})
	return coord.Run(ctx, job.ID, opts)
}

// FixedRoot returns where Run left the patched tree for jobID.
func (s *LocalService) FixedRoot(jobID string) string {
	return s.deps.Workspace.FixedRoot(jobID)
}
