package patch

import "github.com/pmezard/go-difflib/difflib"

// Ratio returns the Ratcliff-Obershelp similarity of a and b computed over
// characters: 2*M/T where M is the number of matched characters and T the
// combined length. Two empty strings score 1.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
