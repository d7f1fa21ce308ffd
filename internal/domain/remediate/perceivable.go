package remediate

import (
	"regexp"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// NewPerceivable returns the remediator for perceivable defects.
func NewPerceivable(fallback domain.FixSuggester) *Remediator {
	return New(domain.CategoryPerceivable, []Rule{
		{ID: "img-alt", Confidence: 0.8, Transform: addImageAlt},
		{ID: "color-contrast", Confidence: 0.4, Transform: flagContrast},
		{ID: "text-alternatives", Confidence: 0.6, Transform: labelGraphic},
	}, fallback)
}

func addImageAlt(code, _ string) (string, bool) {
	return addAttr(code, imgTag, "alt", `alt="Descriptive text for image"`)
}

var colorDecl = regexp.MustCompile(`(?i)(^|[;{\s"'])color\s*:\s*[^;"'}]+;?`)

const contrastNote = "/* review contrast */"

// flagContrast marks the first foreground color for a manual contrast
// review. Picking a background blindly can hide light text.
func flagContrast(code, _ string) (string, bool) {
	if firstIndexFold(code, "background") >= 0 || strings.Contains(code, contrastNote) {
		return "", false
	}
	loc := colorDecl.FindStringIndex(code)
	if loc == nil {
		return "", false
	}
	end := loc[0] + len(strings.TrimRight(code[loc[0]:loc[1]], " \t"))
	return code[:end] + " " + contrastNote + code[end:], true
}

// labelGraphic names inline svg graphics and hides decorative icon fonts.
func labelGraphic(code, _ string) (string, bool) {
	if out, ok := addAttr(code, svgTag, "aria-label", `role="img" aria-label="Graphic"`); ok {
		return out, true
	}
	return addAttr(code, iconTag, "aria-hidden", `aria-hidden="true"`)
}
