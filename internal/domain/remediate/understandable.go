package remediate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// NewUnderstandable returns the remediator for understandable defects.
func NewUnderstandable(fallback domain.FixSuggester) *Remediator {
	return New(domain.CategoryUnderstandable, []Rule{
		{ID: "heading-order", Confidence: 0.5, Transform: raiseHeading},
		{ID: "form-instructions", Confidence: 0.6, Transform: describeInput},
		{ID: "error-identification", Confidence: 0.7, Transform: markInvalid},
		{ID: "language-identification", Confidence: 0.8, Transform: declareLanguage},
	}, fallback)
}

// raiseHeading moves the first heading one level up (h4 becomes h3).
func raiseHeading(code, _ string) (string, bool) {
	m := headingTag.FindStringSubmatchIndex(code)
	if m == nil {
		return "", false
	}
	level, _ := strconv.Atoi(code[m[2]:m[3]])
	if level <= 1 {
		return "", false
	}
	out := code[:m[2]] + strconv.Itoa(level-1) + code[m[3]:]
	closing := fmt.Sprintf("</h%d>", level)
	if i := strings.Index(strings.ToLower(out), closing); i >= 0 {
		out = out[:i] + fmt.Sprintf("</h%d>", level-1) + out[i+len(closing):]
	}
	return out, true
}

func describeInput(code, _ string) (string, bool) {
	return addAttr(code, inputTag, "aria-describedby", `aria-describedby="field-instructions"`)
}

func markInvalid(code, _ string) (string, bool) {
	return addAttr(code, inputTag, "aria-invalid", `aria-invalid="true"`)
}

func declareLanguage(code, _ string) (string, bool) {
	return addAttr(code, htmlTag, "lang", `lang="en"`)
}
