package validator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/abdidvp/pourfix/internal/domain"
)

// validRoles is the WAI-ARIA 1.2 role set, abstract roles excluded.
var validRoles = map[string]bool{}

func init() {
	for _, r := range strings.Fields(`alert alertdialog application article banner blockquote button caption
		cell checkbox code columnheader combobox complementary contentinfo definition deletion dialog
		directory document emphasis feed figure form generic grid gridcell group heading img insertion
		link list listbox listitem log main marquee math menu menubar menuitem menuitemcheckbox
		menuitemradio meter navigation none note option paragraph presentation progressbar radio
		radiogroup region row rowgroup rowheader scrollbar search searchbox separator slider
		spinbutton status strong subscript superscript switch tab table tablist tabpanel term textbox
		time timer toolbar tooltip tree treegrid treeitem`) {
		validRoles[r] = true
	}
}

// Axe audits HTML documents for the DOM-level accessibility rules a
// browser audit would report. JSX and TSX sources are not rendered.
type Axe struct{}

func NewAxe() *Axe { return &Axe{} }

func (a *Axe) Name() string { return domain.ValidatorAxe }

func (a *Axe) Validate(ctx context.Context, root string) ([]domain.ValidationResult, error) {
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
			results = append(results, result(a.Name(), f, []string{"Axe validation failed: " + err.Error()}, nil))
			continue
		}
		errs, warns := AuditDocument(content)
		results = append(results, result(a.Name(), f, errs, warns))
	}
	return results, nil
}

type interactive struct {
	tag   string
	line  int
	named bool
}

type control struct {
	id   string
	line int
}

// AuditDocument returns the errors and warnings for one HTML document.
func AuditDocument(content string) (errs, warns []string) {
	tokens, err := tokenize(content)
	if err != nil {
		return []string{"Axe validation failed: " + err.Error()}, nil
	}

	var (
		sawHTML, sawTitle bool
		lastHeading       int
		labelDepth        int
		labelFor          = map[string]bool{}
		unlabelled        []control
		open              []*interactive
	)
	markNamed := func() {
		for _, it := range open {
			it.named = true
		}
	}

	for _, t := range tokens {
		switch t.Type {
		case html.TextToken:
			if strings.TrimSpace(t.Data) != "" {
				markNamed()
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			errs = append(errs, auditRole(t)...)
			if v, ok := attr(t.Token, "tabindex"); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
					warns = append(warns, fmt.Sprintf("Line %d: Elements should not have tabindex greater than zero (tabindex)", t.Line))
				}
			}

			switch t.Data {
			case "html":
				sawHTML = true
				if !nonEmptyAttr(t.Token, "lang") {
					errs = append(errs, fmt.Sprintf("Line %d: <html> element must have a lang attribute (html-has-lang)", t.Line))
				}
			case "title":
				sawTitle = true
			case "img":
				if _, ok := attr(t.Token, "alt"); !ok && !isPresentational(t) {
					errs = append(errs, fmt.Sprintf("Line %d: Images must have alternate text (image-alt)", t.Line))
				}
				if nonEmptyAttr(t.Token, "alt") {
					markNamed()
				}
			case "label":
				if v, ok := attr(t.Token, "for"); ok {
					labelFor[v] = true
				}
				if t.Type == html.StartTagToken {
					labelDepth++
				}
			case "button", "a":
				if t.Data == "a" {
					if _, ok := attr(t.Token, "href"); !ok {
						break
					}
				}
				it := &interactive{tag: t.Data, line: t.Line,
					named: nonEmptyAttr(t.Token, "aria-label", "aria-labelledby", "title")}
				if t.Type == html.SelfClosingTagToken {
					if !it.named {
						errs = append(errs, nameError(it))
					}
					break
				}
				open = append(open, it)
			}

			if isFormControl(t) && labelDepth == 0 &&
				!nonEmptyAttr(t.Token, "aria-label", "aria-labelledby", "title") {
				id, _ := attr(t.Token, "id")
				unlabelled = append(unlabelled, control{id: id, line: t.Line})
			}

			if lvl := headingLevel(t.Data); lvl > 0 {
				if lastHeading > 0 && lvl > lastHeading+1 {
					errs = append(errs, fmt.Sprintf("Line %d: Heading levels should only increase by one (heading-order)", t.Line))
				}
				lastHeading = lvl
			}
		case html.EndTagToken:
			switch t.Data {
			case "label":
				if labelDepth > 0 {
					labelDepth--
				}
			case "button", "a":
				for i := len(open) - 1; i >= 0; i-- {
					if open[i].tag != t.Data {
						continue
					}
					if !open[i].named {
						errs = append(errs, nameError(open[i]))
					}
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		}
	}

	for _, c := range unlabelled {
		if c.id != "" && labelFor[c.id] {
			continue
		}
		errs = append(errs, fmt.Sprintf("Line %d: Form elements must have labels (label)", c.line))
	}
	if sawHTML && !sawTitle {
		errs = append(errs, "Line 1: Documents must have a <title> element (document-title)")
	}
	return errs, warns
}

func auditRole(t tagToken) []string {
	v, ok := attr(t.Token, "role")
	if !ok {
		return nil
	}
	var out []string
	for _, r := range strings.Fields(strings.ToLower(v)) {
		if !validRoles[r] {
			out = append(out, fmt.Sprintf("Line %d: ARIA role %q is not a valid role (aria-roles)", t.Line, r))
		}
	}
	return out
}

func isPresentational(t tagToken) bool {
	role, _ := attr(t.Token, "role")
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "presentation" || role == "none" {
		return true
	}
	v, _ := attr(t.Token, "aria-hidden")
	return v == "true"
}

func nameError(it *interactive) string {
	if it.tag == "a" {
		return fmt.Sprintf("Line %d: Links must have discernible text (link-name)", it.line)
	}
	return fmt.Sprintf("Line %d: Buttons must have discernible text (button-name)", it.line)
}
