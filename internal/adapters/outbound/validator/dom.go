package validator

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// tagToken is an html token with the 1-indexed line it starts on.
type tagToken struct {
	html.Token
	Line int
}

// tokenize splits markup into tokens while tracking line numbers.
func tokenize(content string) ([]tagToken, error) {
	z := html.NewTokenizer(strings.NewReader(content))
	line := 1
	var tokens []tagToken
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return tokens, nil
			}
			return tokens, z.Err()
		}
		start := line
		line += strings.Count(string(z.Raw()), "\n")
		tokens = append(tokens, tagToken{Token: z.Token(), Line: start})
	}
}

func attr(t html.Token, key string) (string, bool) {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func nonEmptyAttr(t html.Token, keys ...string) bool {
	for _, k := range keys {
		if v, ok := attr(t, k); ok && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func isStart(t tagToken) bool {
	return t.Type == html.StartTagToken || t.Type == html.SelfClosingTagToken
}

// unlabelledInputTypes never need an associated label.
var unlabelledInputTypes = map[string]bool{
	"hidden": true, "submit": true, "button": true, "reset": true, "image": true,
}

func isFormControl(t tagToken) bool {
	switch t.Data {
	case "select", "textarea":
		return true
	case "input":
		typ, _ := attr(t.Token, "type")
		return !unlabelledInputTypes[strings.ToLower(typ)]
	}
	return false
}

func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}
