package validator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/abdidvp/pourfix/internal/domain"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// optionalEnd lists elements whose end tag may be omitted.
var optionalEnd = map[string]bool{
	"html": true, "head": true, "body": true, "p": true, "li": true, "dt": true,
	"dd": true, "option": true, "optgroup": true, "tr": true, "td": true, "th": true,
	"thead": true, "tbody": true, "tfoot": true, "colgroup": true, "rt": true, "rp": true,
}

// HTML checks document structure and element nesting.
type HTML struct{}

func NewHTML() *HTML { return &HTML{} }

func (h *HTML) Name() string { return domain.ValidatorHTML }

func (h *HTML) Validate(ctx context.Context, root string) ([]domain.ValidationResult, error) {
	files, err := scan(root)
	if err != nil {
		return nil, err
	}
	var results []domain.ValidationResult
	for _, f := range files.Markup {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !hasExt(f, ".html", ".htm") {
			continue
		}
		content, err := readFile(root, f)
		if err != nil {
			results = append(results, result(h.Name(), f, []string{"HTML validation failed: " + err.Error()}, nil))
			continue
		}
		errs, warns := CheckStructure(content)
		results = append(results, result(h.Name(), f, errs, warns))
	}
	return results, nil
}

type openElement struct {
	name string
	line int
}

// CheckStructure returns structural errors and warnings for one document.
func CheckStructure(content string) (errs, warns []string) {
	tokens, err := tokenize(content)
	if err != nil {
		return []string{"HTML validation failed: " + err.Error()}, nil
	}

	seen := map[string]bool{}
	var stack []openElement
	first := true
	for _, t := range tokens {
		if first {
			if t.Type == html.TextToken && strings.TrimSpace(t.Data) == "" || t.Type == html.CommentToken {
				continue
			}
			first = false
			if t.Type != html.DoctypeToken {
				warns = append(warns, "Missing DOCTYPE declaration")
			}
		}

		switch t.Type {
		case html.StartTagToken, html.SelfClosingTagToken:
			seen[t.Data] = true
			switch t.Data {
			case "img":
				if _, ok := attr(t.Token, "alt"); !ok {
					errs = append(errs, fmt.Sprintf("Line %d: Image missing alt attribute", t.Line))
				}
			case "input":
				if _, ok := attr(t.Token, "type"); !ok {
					warns = append(warns, fmt.Sprintf("Line %d: Input element missing type attribute", t.Line))
				}
			}
			if t.Type == html.StartTagToken && !voidElements[t.Data] {
				stack = append(stack, openElement{name: t.Data, line: t.Line})
			}
		case html.EndTagToken:
			if voidElements[t.Data] {
				continue
			}
			idx := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == t.Data {
					idx = i
					break
				}
			}
			if idx < 0 {
				errs = append(errs, fmt.Sprintf("Line %d: Unexpected closing tag </%s>", t.Line, t.Data))
				continue
			}
			for _, el := range stack[idx+1:] {
				if !optionalEnd[el.name] {
					errs = append(errs, fmt.Sprintf("Line %d: Unclosed <%s> element", el.line, el.name))
				}
			}
			stack = stack[:idx]
		}
	}
	for _, el := range stack {
		if !optionalEnd[el.name] {
			errs = append(errs, fmt.Sprintf("Line %d: Unclosed <%s> element", el.line, el.name))
		}
	}

	if !seen["html"] {
		errs = append(errs, "Missing <html> tag")
	}
	if !seen["head"] {
		errs = append(errs, "Missing <head> section")
	}
	if !seen["body"] {
		errs = append(errs, "Missing <body> section")
	}
	return errs, warns
}
