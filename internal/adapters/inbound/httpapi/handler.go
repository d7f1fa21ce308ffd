// Package httpapi serves the upload, poll and download API over gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/report"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/workspace"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/logger"
)

// Jobs creates, starts and reports on pipeline jobs.
type Jobs interface {
	Create(ctx context.Context) (*domain.Job, error)
	Start(ctx context.Context, jobID string)
	Fail(ctx context.Context, jobID string, cause error) error
	Status(ctx context.Context, jobID string) (*domain.Job, error)
}

// Uploads stores uploaded archives and locates job artifacts.
type Uploads interface {
	IngestZip(ctx context.Context, jobID string, r io.Reader) (int, error)
	ArtifactPath(jobID, name string) string
}

// Reports loads persisted run reports.
type Reports interface {
	Load(ctx context.Context, jobID string) (*domain.RunReport, error)
}

type Handler struct {
	jobs    Jobs
	uploads Uploads
	reports Reports
}

func NewHandler(jobs Jobs, uploads Uploads, reports Reports) *Handler {
	return &Handler{jobs: jobs, uploads: uploads, reports: reports}
}

type uploadResponse struct {
	JobID string `json:"job_id"`
}

// Upload accepts a multipart "file" zip and starts a job for it.
func (h *Handler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".zip") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only ZIP files are allowed"})
		return
	}

	job, err := h.jobs.Create(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{JobID: job.ID, Component: "pourfix.http"})

	n, err := h.ingest(ctx, job.ID, func() (io.ReadCloser, error) { return fh.Open() })
	if err == nil && n == 0 {
		err = fmt.Errorf("%w: no supported source files", workspace.ErrInvalidArchive)
	}
	if err != nil {
		if ferr := h.jobs.Fail(ctx, job.ID, fmt.Errorf("upload: %w", err)); ferr != nil {
			slog.ErrorContext(ctx, "recording upload failure", "error", ferr)
		}
		status := http.StatusInternalServerError
		if errors.Is(err, workspace.ErrInvalidArchive) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	slog.InfoContext(ctx, "upload accepted", "files", n, "filename", fh.Filename)
	h.jobs.Start(ctx, job.ID)
	c.JSON(http.StatusOK, uploadResponse{JobID: job.ID})
}

func (h *Handler) ingest(ctx context.Context, jobID string, open func() (io.ReadCloser, error)) (int, error) {
	f, err := open()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return h.uploads.IngestZip(ctx, jobID, f)
}

// Status returns the polled job state.
func (h *Handler) Status(c *gin.Context) {
	job, ok := h.job(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, job)
}

// Download serves fixed.zip once the job is complete.
func (h *Handler) Download(c *gin.Context) {
	job, ok := h.completedJob(c)
	if !ok {
		return
	}
	path := h.uploads.ArtifactPath(job.ID, workspace.PackageName)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Fixed ZIP not found"})
		return
	}
	c.FileAttachment(path, "fixed_"+job.ID+".zip")
}

// Report returns the JSON run report.
func (h *Handler) Report(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// SARIF returns the run report as a SARIF 2.1.0 log.
func (h *Handler) SARIF(c *gin.Context) {
	r, ok := h.report(c)
	if !ok {
		return
	}
	sarifLog, err := report.BuildSARIF(r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "application/sarif+json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.SARIFName))
	c.Status(http.StatusOK)
	if err := sarifLog.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) report(c *gin.Context) (*domain.RunReport, bool) {
	job, ok := h.completedJob(c)
	if !ok {
		return nil, false
	}
	r, err := h.reports.Load(c.Request.Context(), job.ID)
	if errors.Is(err, domain.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return r, true
}

func (h *Handler) completedJob(c *gin.Context) (*domain.Job, bool) {
	job, ok := h.job(c)
	if !ok {
		return nil, false
	}
	if job.Status != domain.JobComplete {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job not complete"})
		return nil, false
	}
	return job, true
}

func (h *Handler) job(c *gin.Context) (*domain.Job, bool) {
	job, err := h.jobs.Status(c.Request.Context(), c.Param("job_id"))
	if errors.Is(err, domain.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return job, true
}
