package remediate

import (
	"regexp"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// NewRobust returns the remediator for robust defects.
func NewRobust(fallback domain.FixSuggester) *Remediator {
	return New(domain.CategoryRobust, []Rule{
		{ID: "role", Confidence: 0.7, Transform: addButtonRole},
		{ID: "aria-props", Confidence: 0.6, Transform: hyphenateAria},
		{ID: "valid-html", Confidence: 0.8, Transform: markDecorative},
		{ID: "semantic-html", Confidence: 0.5, Transform: promoteLandmark},
	}, fallback)
}

var divTag = openTag("div")

func addButtonRole(code, _ string) (string, bool) {
	if _, ok := clickMarker(code); !ok {
		return "", false
	}
	return addAttr(code, divTag, "role", `role="button"`)
}

var camelAria = regexp.MustCompile(`\baria([A-Z][A-Za-z]*)=`)

// hyphenateAria rewrites camelCase aria props (ariaLabel=) to the
// hyphenated form the DOM understands (aria-label=).
func hyphenateAria(code, _ string) (string, bool) {
	if !camelAria.MatchString(code) {
		return "", false
	}
	return camelAria.ReplaceAllStringFunc(code, func(m string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(m, "aria"), "=")
		return "aria-" + strings.ToLower(name) + "="
	}), true
}

func markDecorative(code, _ string) (string, bool) {
	return addAttr(code, imgTag, "alt", `alt=""`)
}

var landmarkDiv = regexp.MustCompile(`(?i)<div(\s+[^>]*?)?\s+(?:class|className)\s*=\s*["'](header|footer|nav|main)["']([^>]*)>`)

// promoteLandmark replaces a div acting as a landmark with the semantic
// element. The snippet must contain exactly one closing div.
func promoteLandmark(code, _ string) (string, bool) {
	m := landmarkDiv.FindStringSubmatchIndex(code)
	if m == nil || strings.Count(strings.ToLower(code), "</div>") != 1 {
		return "", false
	}
	name := strings.ToLower(code[m[4]:m[5]])
	var rest string
	if m[2] >= 0 {
		rest += code[m[2]:m[3]]
	}
	rest += code[m[6]:m[7]]
	out := code[:m[0]] + "<" + name + rest + ">" + code[m[1]:]
	i := strings.LastIndex(strings.ToLower(out), "</div>")
	return out[:i] + "</" + name + ">" + out[i+len("</div>"):], true
}
