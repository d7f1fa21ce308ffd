// Package residual converts failed validation diagnostics back into defects
// for the single residual remediation round.
package residual

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/classify"
)

// ContextLines is the number of lines kept on each side of the diagnostic line.
const ContextLines = 3

var lineRe = regexp.MustCompile(`(?i)\bline (\d+)`)

// ReadFunc returns the current content of a tree-relative file.
type ReadFunc func(filePath string) (string, error)

// Converter turns failing ValidationResults into synthetic defects.
type Converter struct {
	classifier *classify.Classifier
	read       ReadFunc
}

// NewConverter creates a Converter reading snippets through read.
func NewConverter(classifier *classify.Classifier, read ReadFunc) *Converter {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Converter{classifier: classifier, read: read}
}

// Convert produces one defect per error of each failing result. Results for
// the synthetic system path carry no file and are skipped. The output is
// deduplicated.
func (c *Converter) Convert(results []domain.ValidationResult) []domain.Defect {
	var defects []domain.Defect
	contents := make(map[string][]string)

	for _, res := range results {
		if res.Passed || res.FilePath == domain.SystemFilePath {
			continue
		}
		lines, ok := contents[res.FilePath]
		if !ok {
			lines = c.lines(res.FilePath)
			contents[res.FilePath] = lines
		}
		for _, msg := range res.Errors {
			defects = append(defects, c.defect(res.FilePath, msg, lines))
		}
	}
	return domain.DedupDefects(defects)
}

func (c *Converter) defect(filePath, msg string, lines []string) domain.Defect {
	line := LineOf(msg)
	rule := c.classifier.RuleIDOf(msg)
	return domain.Defect{
		ID:          fmt.Sprintf("residual_%s_%d_%s", filePath, line, rule),
		FilePath:    filePath,
		LineStart:   line,
		LineEnd:     line,
		Category:    c.classifier.CategoryOf(msg),
		Severity:    c.classifier.SeverityOf(msg),
		Description: "Residual issue: " + msg,
		CodeSnippet: Snippet(lines, line),
		RuleID:      rule,
	}
}

func (c *Converter) lines(filePath string) []string {
	if c.read == nil {
		return nil
	}
	content, err := c.read(filePath)
	if err != nil {
		return nil
	}
	return strings.Split(content, "\n")
}

// LineOf extracts the first "line N" reference from msg, defaulting to 1.
func LineOf(msg string) int {
	m := lineRe.FindStringSubmatch(msg)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Snippet returns lines [line-4, line+3) of the file, joined and trimmed:
// the diagnostic line with up to three lines of context on each side.
func Snippet(lines []string, line int) string {
	if len(lines) == 0 {
		return ""
	}
	start := max(0, line-1-ContextLines)
	end := min(len(lines), line+ContextLines)
	if start >= end {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}
