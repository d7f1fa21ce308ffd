package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

var darkColors = map[string]bool{
	"#000": true, "#000000": true, "black": true, "rgb(0,0,0)": true,
}

// CSS checks stylesheet brace balance and dark text set without a
// background in the same rule.
type CSS struct{}

func NewCSS() *CSS { return &CSS{} }

func (c *CSS) Name() string { return domain.ValidatorCSS }

func (c *CSS) Validate(ctx context.Context, root string) ([]domain.ValidationResult, error) {
	files, err := scan(root)
	if err != nil {
		return nil, err
	}
	results := make([]domain.ValidationResult, 0, len(files.Styles))
	for _, f := range files.Styles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		content, err := readFile(root, f)
		if err != nil {
			results = append(results, result(c.Name(), f, []string{"CSS validation failed: " + err.Error()}, nil))
			continue
		}
		errs, warns := CheckStylesheet(content)
		results = append(results, result(c.Name(), f, errs, warns))
	}
	return results, nil
}

type cssBlock struct {
	line int
	body strings.Builder
}

// CheckStylesheet returns brace errors and contrast warnings for one
// stylesheet. Comments and quoted strings are ignored.
func CheckStylesheet(content string) (errs, warns []string) {
	var (
		stack   []*cssBlock
		line    = 1
		quote   byte
		comment bool
	)
	for i := 0; i < len(content); i++ {
		ch := content[i]
		if ch == '\n' {
			line++
		}
		switch {
		case comment:
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				comment = false
				i++
			}
			if len(stack) > 0 && ch == '\n' {
				stack[len(stack)-1].body.WriteByte('\n')
			}
			continue
		case quote != 0:
			if ch == quote && content[i-1] != '\\' {
				quote = 0
			}
		case ch == '/' && i+1 < len(content) && content[i+1] == '*':
			comment = true
			i++
			continue
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '{':
			stack = append(stack, &cssBlock{line: line})
			continue
		case ch == '}':
			if len(stack) == 0 {
				errs = append(errs, fmt.Sprintf("Unexpected closing brace at line %d", line))
				continue
			}
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				stack[len(stack)-1].body.WriteString(strings.Repeat("\n", strings.Count(b.body.String(), "\n")))
			}
			if w := contrastWarning(b); w != "" {
				warns = append(warns, w)
			}
			continue
		}
		if len(stack) > 0 {
			stack[len(stack)-1].body.WriteByte(ch)
		}
	}
	for _, b := range stack {
		errs = append(errs, fmt.Sprintf("Unclosed CSS rule at line %d", b.line))
	}
	return errs, warns
}

func contrastWarning(b *cssBlock) string {
	darkLine := 0
	hasBackground := false
	for i, l := range strings.Split(b.body.String(), "\n") {
		for _, decl := range strings.Split(l, ";") {
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				continue
			}
			prop = strings.ToLower(strings.TrimSpace(prop))
			val = strings.ToLower(strings.Join(strings.Fields(val), ""))
			val = strings.TrimSuffix(val, "!important")
			switch {
			case strings.HasPrefix(prop, "background"):
				hasBackground = true
			case prop == "color" && darkColors[val] && darkLine == 0:
				darkLine = b.line + i
			}
		}
	}
	if darkLine == 0 || hasBackground {
		return ""
	}
	return fmt.Sprintf("Potential contrast issue at line %d: dark text without background", darkLine)
}
