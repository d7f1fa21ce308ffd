// Package detector finds common accessibility defects in web sources with
// line-oriented heuristics. It is the default domain.Detector.
package detector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/domain"
)

// Rule ids emitted by the detector.
const (
	RuleImgAlt       = "img-alt"
	RuleLabel        = "label"
	RuleAriaLabel    = "aria-label"
	RuleRole         = "role"
	RuleHeadingOrder = "heading-order"
	RuleLanguage     = "language-identification"
	RuleColor        = "color-contrast"
)

var (
	tagStartRe   = regexp.MustCompile(`(?i)<(img|input|select|textarea|div|span|html|h[1-6])\b`)
	handlerRe    = regexp.MustCompile(`\b(on[A-Za-z]+)\s*=`)
	labelForRe   = regexp.MustCompile(`(?i)\b(?:for|htmlFor)\s*=\s*["{]?'?([\w-]+)`)
	idAttrRe     = regexp.MustCompile(`(?i)\sid\s*=\s*["{]?'?([\w-]+)`)
	inputTypeRe  = regexp.MustCompile(`(?i)\stype\s*=\s*["']?(\w+)`)
	colorDeclRe  = regexp.MustCompile(`(?i)(^|[;{\s])color\s*:`)
	backgroundRe = regexp.MustCompile(`(?i)(^|[;{\s])background(-color)?\s*:`)
)

var pointerEvents = map[string]bool{
	"click": true, "dblclick": true, "double": true,
	"mouse": true, "pointer": true, "touch": true,
}

// RuleDetector implements domain.Detector.
type RuleDetector struct {
	skip map[string]bool
}

// New returns a detector with the given rules disabled.
func New(skipRules ...string) *RuleDetector {
	skip := make(map[string]bool, len(skipRules))
	for _, r := range skipRules {
		skip[r] = true
	}
	return &RuleDetector{skip: skip}
}

// Detect reads each file under root and returns its defects in file order,
// then line order.
func (d *RuleDetector) Detect(ctx context.Context, root string, files []string) ([]domain.Defect, error) {
	var defects []domain.Defect
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

		var found []domain.Defect
		switch scanner.Kind(f) {
		case scanner.KindStyle:
			found = detectCSS(f, lines)
		case scanner.KindMarkup, scanner.KindScript:
			found = detectMarkup(f, lines)
		}
		for _, def := range found {
			if !d.skip[def.RuleID] {
				defects = append(defects, def)
			}
		}
	}
	return defects, nil
}

func newDefect(file string, line int, rule string, cat domain.Category, sev domain.Severity, desc, snippet string) domain.Defect {
	return domain.Defect{
		ID:          fmt.Sprintf("%s_%s_%d", rule, file, line),
		FilePath:    file,
		LineStart:   line,
		LineEnd:     line,
		Category:    cat,
		Severity:    sev,
		Description: desc,
		CodeSnippet: snippet,
		RuleID:      rule,
	}
}

func detectMarkup(file string, lines []string) []domain.Defect {
	var out []domain.Defect
	labelled := labelTargets(lines)
	lastHeading := 0

	for i, raw := range lines {
		ln := i + 1
		snippet := strings.TrimSpace(raw)
		for _, m := range tagStartRe.FindAllStringSubmatchIndex(raw, -1) {
			name := strings.ToLower(raw[m[2]:m[3]])
			tag := tagText(raw, m[0])

			switch {
			case name == "img":
				if !hasAttr(tag, "alt") {
					out = append(out, newDefect(file, ln, RuleImgAlt, domain.CategoryPerceivable, domain.SeverityHigh,
						"Image missing alt text", snippet))
				}
			case name == "input" || name == "select" || name == "textarea":
				if needsLabel(name, tag, labelled) {
					out = append(out, newDefect(file, ln, RuleLabel, domain.CategoryOperable, domain.SeverityHigh,
						fmt.Sprintf("Form %s missing label", name), snippet))
				}
			case name == "div" || name == "span":
				if !pointerOnly(tag) {
					continue
				}
				if !hasAttr(tag, "aria-label") && !hasAttr(tag, "aria-labelledby") {
					out = append(out, newDefect(file, ln, RuleAriaLabel, domain.CategoryOperable, domain.SeverityMedium,
						"Interactive element missing accessible name", snippet))
				}
				if !hasAttr(tag, "role") {
					out = append(out, newDefect(file, ln, RuleRole, domain.CategoryRobust, domain.SeverityMedium,
						"Clickable element missing role", snippet))
				}
			case name == "html":
				if scanner.Kind(file) == scanner.KindMarkup && !hasAttr(tag, "lang") {
					out = append(out, newDefect(file, ln, RuleLanguage, domain.CategoryUnderstandable, domain.SeverityMedium,
						"Document missing lang attribute", snippet))
				}
			case len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6':
				level, _ := strconv.Atoi(name[1:])
				if lastHeading > 0 && level > lastHeading+1 {
					out = append(out, newDefect(file, ln, RuleHeadingOrder, domain.CategoryUnderstandable, domain.SeverityMedium,
						fmt.Sprintf("Heading level skipped from h%d to h%d", lastHeading, level), snippet))
				}
				lastHeading = level
			}
		}
	}
	return out
}

// tagText returns the opening tag starting at start, stopping at the first
// '>' outside quotes and JSX braces. An unterminated tag runs to end of line.
func tagText(line string, start int) string {
	depth := 0
	var quote byte
	for i := start; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '>' && depth == 0:
			return line[start : i+1]
		}
	}
	return line[start:]
}

func hasAttr(tag, attr string) bool {
	re := regexp.MustCompile(`(?i)\s` + regexp.QuoteMeta(attr) + `\s*=`)
	return re.MatchString(tag)
}

func labelTargets(lines []string) map[string]bool {
	targets := make(map[string]bool)
	for _, l := range lines {
		if !strings.Contains(strings.ToLower(l), "<label") {
			continue
		}
		for _, m := range labelForRe.FindAllStringSubmatch(l, -1) {
			targets[m[1]] = true
		}
	}
	return targets
}

func needsLabel(name, tag string, labelled map[string]bool) bool {
	if name == "input" {
		if m := inputTypeRe.FindStringSubmatch(tag); m != nil {
			switch strings.ToLower(m[1]) {
			case "hidden", "submit", "button", "reset", "image":
				return false
			}
		}
	}
	if hasAttr(tag, "aria-label") || hasAttr(tag, "aria-labelledby") {
		return false
	}
	if m := idAttrRe.FindStringSubmatch(tag); m != nil && labelled[m[1]] {
		return false
	}
	return true
}

// pointerOnly reports whether tag handles a pointer event but no keyboard event.
func pointerOnly(tag string) bool {
	pointer, keyboard := false, false
	for _, m := range handlerRe.FindAllStringSubmatch(tag, -1) {
		switch ev := eventOf(m[1]); {
		case strings.HasPrefix(ev, "key"):
			keyboard = true
		case pointerEvents[ev]:
			pointer = true
		}
	}
	return pointer && !keyboard
}

// eventOf extracts the first word of a handler name: onMouseDown -> mouse,
// onclick -> click.
func eventOf(handler string) string {
	words := camelcase.Split(handler)
	if len(words) >= 2 && words[0] == "on" {
		return strings.ToLower(words[1])
	}
	return strings.ToLower(strings.TrimPrefix(handler, "on"))
}

func detectCSS(file string, lines []string) []domain.Defect {
	var out []domain.Defect
	depth := 0
	colorLine := 0
	hasBackground := false

	for i, raw := range lines {
		for _, part := range splitBraces(raw) {
			switch part {
			case "{":
				depth++
				colorLine, hasBackground = 0, false
			case "}":
				if depth > 0 {
					depth--
				}
				if colorLine > 0 && !hasBackground {
					out = append(out, newDefect(file, colorLine, RuleColor, domain.CategoryPerceivable, domain.SeverityLow,
						"Text color set without background color", strings.TrimSpace(lines[colorLine-1])))
				}
				colorLine, hasBackground = 0, false
			default:
				if depth == 0 {
					continue
				}
				if backgroundRe.MatchString(" " + part) {
					hasBackground = true
				} else if colorLine == 0 && colorDeclRe.MatchString(" "+part) {
					colorLine = i + 1
				}
			}
		}
	}
	return out
}

// splitBraces splits a line into text segments and standalone braces.
func splitBraces(line string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(line); i++ {
		if line[i] == '{' || line[i] == '}' {
			if start < i {
				parts = append(parts, line[start:i])
			}
			parts = append(parts, line[i:i+1])
			start = i + 1
		}
	}
	if start < len(line) {
		parts = append(parts, line[start:])
	}
	return parts
}
