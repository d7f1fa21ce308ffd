package remediate

import (
	"regexp"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// NewOperable returns the remediator for operable defects.
func NewOperable(fallback domain.FixSuggester) *Remediator {
	return New(domain.CategoryOperable, []Rule{
		{ID: "label", Confidence: 0.7, Transform: labelInput},
		{ID: "aria-label", Confidence: 0.6, Transform: labelClickable},
		{ID: "keyboard-navigation", Confidence: 0.5, Transform: makeFocusable},
		{ID: "focus-management", Confidence: 0.4, Transform: restoreOutline},
	}, fallback)
}

func labelInput(code, _ string) (string, bool) {
	return addAttr(code, inputTag, "aria-label", `aria-label="Input field"`)
}

func labelClickable(code, _ string) (string, bool) {
	if firstIndexFold(code, "aria-label") >= 0 {
		return "", false
	}
	marker, ok := clickMarker(code)
	if !ok {
		return "", false
	}
	return insertBefore(code, marker, `aria-label="Interactive element" `)
}

func makeFocusable(code, filePath string) (string, bool) {
	if firstIndexFold(code, "tabindex") >= 0 {
		return "", false
	}
	marker, ok := clickMarker(code)
	if !ok {
		return "", false
	}
	attr := `tabindex="0" `
	if isJSX(filePath) {
		attr = "tabIndex={0} "
	}
	return insertBefore(code, marker, attr)
}

var outlineNone = regexp.MustCompile(`(?i)outline\s*:\s*(none|0)\b`)

func restoreOutline(code, _ string) (string, bool) {
	if !outlineNone.MatchString(code) {
		return "", false
	}
	return outlineNone.ReplaceAllString(code, "outline: 2px solid currentColor"), true
}

// clickMarker returns the pointer handler attribute as spelled in code.
func clickMarker(code string) (string, bool) {
	for _, m := range []string{"onClick", "onclick"} {
		if strings.Contains(code, m) {
			return m, true
		}
	}
	return "", false
}
