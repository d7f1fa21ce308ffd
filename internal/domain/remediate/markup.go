package remediate

import (
	"path"
	"regexp"
	"strings"
)

// openTag matches an opening tag. Quoted values and JSX expressions (one
// level of nested braces) may contain '>'.
func openTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<` + name + `\b(?:[^>{"']|"[^"]*"|'[^']*'|\{(?:[^{}]|\{[^{}]*\})*\})*>`)
}

var (
	imgTag     = openTag("img")
	inputTag   = openTag("(?:input|select|textarea)")
	htmlTag    = openTag("html")
	svgTag     = openTag("svg")
	iconTag    = openTag("i")
	headingTag = regexp.MustCompile(`(?i)<h([1-6])\b`)
)

// hasAttr reports whether tag declares the named attribute.
func hasAttr(tag, name string) bool {
	re := regexp.MustCompile(`(?i)\s` + regexp.QuoteMeta(name) + `\s*=`)
	return re.MatchString(tag)
}

// addAttr inserts attr into the first tag matched by re that lacks the
// attribute named skip. Self-closing tags keep their closing slash.
func addAttr(code string, re *regexp.Regexp, skip, attr string) (string, bool) {
	for _, loc := range re.FindAllStringIndex(code, -1) {
		tag := code[loc[0]:loc[1]]
		if hasAttr(tag, skip) {
			continue
		}
		body := strings.TrimSuffix(tag, ">")
		body = strings.TrimSuffix(body, "/")
		head := strings.TrimRight(body, " \t\n")
		tail := tag[len(head):]
		return code[:loc[0]] + head + " " + attr + tail + code[loc[1]:], true
	}
	return "", false
}

// insertBefore places text ahead of the first occurrence of marker.
func insertBefore(code, marker, text string) (string, bool) {
	i := strings.Index(code, marker)
	if i < 0 {
		return "", false
	}
	return code[:i] + text + code[i:], true
}

// isJSX reports whether filePath holds component markup.
func isJSX(filePath string) bool {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".jsx", ".tsx", ".js", ".ts":
		return true
	}
	return false
}

func firstIndexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
