package patch_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
)

const imgPage = "<html>\n<body>\n<img src=\"x.png\">\n</body>\n</html>"

func imgFix() domain.Fix {
	return domain.Fix{
		IssueID:    "d1",
		FilePath:   "a.html",
		LineStart:  3,
		LineEnd:    3,
		BeforeCode: `<img src="x.png">`,
		AfterCode:  `<img src="x.png" alt="Descriptive text for image">`,
		Confidence: 0.8,
	}
}

func constSimilarity(v float64) patch.SimilarityFunc {
	return func(_, _ string) float64 { return v }
}

func TestApplyFixes_ExactReplacement(t *testing.T) {
	fixes := []domain.Fix{imgFix()}

	out, outcomes := patch.NewEngine().ApplyFixes(imgPage, fixes)

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.PatchSuccess, outcomes[0].Status)
	assert.Equal(t, domain.MethodExactReplacement, outcomes[0].Method)
	assert.True(t, fixes[0].Applied)
	assert.Equal(t, `<img src="x.png" alt="Descriptive text for image">`, strings.Split(out, "\n")[2])
}

func TestApplyFixes_ReplacesFirstOccurrenceOnly(t *testing.T) {
	content := "<b>x</b>\n<b>x</b>"
	fixes := []domain.Fix{{IssueID: "d", LineStart: 1, LineEnd: 1, BeforeCode: "<b>x</b>", AfterCode: "<strong>x</strong>"}}

	out, _ := patch.NewEngine().ApplyFixes(content, fixes)

	assert.Equal(t, "<strong>x</strong>\n<b>x</b>", out)
}

func TestApplyFixes_Idempotent(t *testing.T) {
	engine := patch.NewEngine()
	first, _ := engine.ApplyFixes(imgPage, []domain.Fix{imgFix()})

	second, outcomes := engine.ApplyFixes(first, []domain.Fix{imgFix()})

	assert.Equal(t, first, second)
	assert.Equal(t, domain.PatchSkipped, outcomes[0].Status)
	assert.Equal(t, domain.MethodAlreadyApplied, outcomes[0].Method)
}

func TestApplyFixes_IdempotentWhenAfterExtendsBefore(t *testing.T) {
	css := ".muted {\n  color: #777;\n}\n"
	fix := domain.Fix{IssueID: "c1", LineStart: 2, LineEnd: 2,
		BeforeCode: "color: #777;", AfterCode: "color: #777; /* review contrast */"}

	once, _ := patch.NewEngine().ApplyFixes(css, []domain.Fix{fix})
	twice, outcomes := patch.NewEngine().ApplyFixes(once, []domain.Fix{fix})

	assert.Equal(t, once, twice)
	assert.Equal(t, domain.PatchSkipped, outcomes[0].Status)
	assert.Equal(t, domain.MethodAlreadyApplied, outcomes[0].Method)
}

func TestApplyFixes_LineAwareIgnoresSurroundingWhitespace(t *testing.T) {
	content := "<form>\n    <input id=\"q\">\n</form>"
	fixes := []domain.Fix{{
		IssueID: "d2", LineStart: 2, LineEnd: 2,
		BeforeCode: "<input id=\"q\">   ",
		AfterCode:  `<input id="q" aria-label="Input field">`,
	}}

	out, outcomes := patch.NewEngine().ApplyFixes(content, fixes)

	assert.Equal(t, domain.MethodLineAware, outcomes[0].Method)
	assert.True(t, fixes[0].Applied)
	assert.Equal(t, "<form>\n    <input id=\"q\" aria-label=\"Input field\">\n</form>", out)
}

func TestApplyFixes_LineAwareKeepsIndentedAfterCode(t *testing.T) {
	content := "<form>\n    <input id=\"q\">\n</form>"
	fixes := []domain.Fix{{
		IssueID: "d9", LineStart: 2, LineEnd: 2,
		BeforeCode: "<input id=\"q\"> ",
		AfterCode:  "  <input id=\"q\"\n    aria-label=\"Input field\">",
	}}

	out, outcomes := patch.NewEngine().ApplyFixes(content, fixes)

	assert.Equal(t, domain.MethodLineAware, outcomes[0].Method)
	assert.Equal(t, "<form>\n  <input id=\"q\"\n    aria-label=\"Input field\">\n</form>", out)
}

func TestApplyFixes_DescendingOrderSurvivesLineShift(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = fmt.Sprintf("<p>line %d</p>", i+1)
	}
	lines[4] = "  <h3>Title</h3>"
	lines[9] = "  <img src=\"a.png\">"
	content := strings.Join(lines, "\n")

	// Trailing whitespace defeats exact matching so both fixes rely on
	// their line ranges.
	fixes := []domain.Fix{
		{IssueID: "five", LineStart: 5, LineEnd: 5, BeforeCode: "<h3>Title</h3> ", AfterCode: "<h2>Title</h2>"},
		{IssueID: "ten", LineStart: 10, LineEnd: 10, BeforeCode: "<img src=\"a.png\"> ", AfterCode: "<img src=\"a.png\"\n    alt=\"Photo\">"},
	}

	out, outcomes := patch.NewEngine().ApplyFixes(content, fixes)

	got := strings.Split(out, "\n")
	require.Len(t, got, 13)
	assert.Equal(t, "  <h2>Title</h2>", got[4])
	assert.Equal(t, "  <img src=\"a.png\"", got[9])
	assert.Equal(t, "    alt=\"Photo\">", got[10])
	for _, o := range outcomes {
		assert.Equal(t, domain.PatchSuccess, o.Status, o.FixID)
	}
	assert.Equal(t, "five", outcomes[0].FixID, "outcomes stay aligned with input order")
}

func clickableDivFixes() []domain.Fix {
	before := `<div class="card" onclick="open()">Open</div>`
	return []domain.Fix{
		{IssueID: "aria-label_a.html_2", LineStart: 2, LineEnd: 2, BeforeCode: before,
			AfterCode: `<div class="card" aria-label="Interactive element" onclick="open()">Open</div>`},
		{IssueID: "role_a.html_2", LineStart: 2, LineEnd: 2, BeforeCode: before,
			AfterCode: `<div class="card" onclick="open()" role="button">Open</div>`},
	}
}

func TestApplyFixes_SameLineFixesCompose(t *testing.T) {
	content := "<main>\n  <div class=\"card\" onclick=\"open()\">Open</div>\n</main>"
	fixes := clickableDivFixes()

	out, outcomes := patch.NewEngine().ApplyFixes(content, fixes)

	assert.Equal(t, `  <div class="card" aria-label="Interactive element" onclick="open()" role="button">Open</div>`,
		strings.Split(out, "\n")[1])
	assert.Equal(t, domain.MethodExactReplacement, outcomes[0].Method)
	assert.Equal(t, domain.PatchSuccess, outcomes[1].Status)
	assert.Equal(t, domain.MethodLineRebase, outcomes[1].Method)
	assert.True(t, fixes[0].Applied)
	assert.True(t, fixes[1].Applied)

	again, outcomes := patch.NewEngine().ApplyFixes(out, clickableDivFixes())
	assert.Equal(t, out, again)
	for _, o := range outcomes {
		assert.Equal(t, domain.PatchSkipped, o.Status, o.FixID)
		assert.Equal(t, domain.MethodAlreadyApplied, o.Method, o.FixID)
	}
}

func TestApplyFixes_RepeatedSnippetFixedOnOwnLine(t *testing.T) {
	css := ".a {\n  color: #777;\n}\n.b {\n  color: #777;\n}\n"
	fix := func(id string, line int) domain.Fix {
		return domain.Fix{IssueID: id, LineStart: line, LineEnd: line,
			BeforeCode: "color: #777;", AfterCode: "color: #777; /* review contrast */"}
	}
	fixes := []domain.Fix{fix("c2", 2), fix("c5", 5)}

	out, outcomes := patch.NewEngine().ApplyFixes(css, fixes)

	assert.Equal(t, ".a {\n  color: #777; /* review contrast */\n}\n.b {\n  color: #777; /* review contrast */\n}\n", out)
	for _, o := range outcomes {
		assert.Equal(t, domain.PatchSuccess, o.Status, o.FixID)
		assert.Equal(t, domain.MethodExactReplacement, o.Method, o.FixID)
	}
}

func TestApplyFixes_AlreadyAppliedElsewhereStillFixesOwnLine(t *testing.T) {
	css := ".a {\n  color: #777; /* review contrast */\n}\n.b {\n  color: #777;\n}\n"
	fixes := []domain.Fix{{IssueID: "c5", LineStart: 5, LineEnd: 5,
		BeforeCode: "color: #777;", AfterCode: "color: #777; /* review contrast */"}}

	out, outcomes := patch.NewEngine().ApplyFixes(css, fixes)

	assert.Equal(t, domain.PatchSuccess, outcomes[0].Status)
	assert.Equal(t, "  color: #777; /* review contrast */", strings.Split(out, "\n")[4])
	assert.Equal(t, "  color: #777; /* review contrast */", strings.Split(out, "\n")[1])
}

func TestApplyFixes_FuzzyMatch(t *testing.T) {
	content := "<div>\n<img src=\"photo.png\" class=\"hero\">\n</div>"
	fixes := []domain.Fix{{
		IssueID: "d3", LineStart: 9, LineEnd: 9,
		BeforeCode: `<img src="photo.png" class="hero"/>`,
		AfterCode:  `<img src="photo.png" class="hero" alt="Hero"/>`,
	}}

	out, outcomes := patch.NewEngine().ApplyFixes(content, fixes)

	assert.Equal(t, domain.PatchFuzzySuccess, outcomes[0].Status)
	assert.Equal(t, domain.MethodFuzzyMatching, outcomes[0].Method)
	assert.Greater(t, outcomes[0].Confidence, 0.6)
	assert.False(t, fixes[0].Applied, "fuzzy matches are not full successes")
	assert.Equal(t, fixes[0].AfterCode, out)
}

func TestApplyFixes_FuzzyThresholdIsExclusive(t *testing.T) {
	content := "alpha\nbeta\ngamma"
	fix := domain.Fix{IssueID: "d4", LineStart: 1, LineEnd: 1, BeforeCode: "zzz", AfterCode: "REPLACED"}

	engine := patch.NewEngine()
	engine.Similarity = constSimilarity(0.6)
	out, outcomes := engine.ApplyFixes(content, []domain.Fix{fix})
	assert.Equal(t, content, out)
	assert.Equal(t, domain.PatchFailed, outcomes[0].Status)
	assert.Equal(t, domain.ReasonNoMatchFound, outcomes[0].Reason)

	engine.Similarity = constSimilarity(0.61)
	out, outcomes = engine.ApplyFixes(content, []domain.Fix{fix})
	assert.Equal(t, "REPLACED", out)
	assert.Equal(t, domain.PatchFuzzySuccess, outcomes[0].Status)
	assert.InDelta(t, 0.61, outcomes[0].Confidence, 1e-9)
}

func TestApplyFixes_FuzzyTiesPickFirstChunk(t *testing.T) {
	lines := make([]string, 600)
	for i := range lines {
		lines[i] = fmt.Sprintf("row %d", i)
	}
	content := strings.Join(lines, "\n")

	engine := patch.NewEngine()
	engine.Similarity = constSimilarity(0.7)
	out, _ := engine.ApplyFixes(content, []domain.Fix{{IssueID: "d5", BeforeCode: "nope", AfterCode: "REPLACED"}})

	got := strings.Split(out, "\n")
	require.Len(t, got, 101)
	assert.Equal(t, "REPLACED", got[0])
	assert.Equal(t, "row 500", got[1])
}

func TestApplyFixes_NoMatch(t *testing.T) {
	fixes := []domain.Fix{{IssueID: "d6", LineStart: 1, LineEnd: 1, BeforeCode: "<video>", AfterCode: "<video controls>"}}

	out, outcomes := patch.NewEngine().ApplyFixes("short\nfile", fixes)

	assert.Equal(t, "short\nfile", out)
	assert.Equal(t, domain.PatchFailed, outcomes[0].Status)
	assert.False(t, fixes[0].Applied)
}

func TestApplyFixes_EmptyBeforeCodeFails(t *testing.T) {
	_, outcomes := patch.NewEngine().ApplyFixes("x", []domain.Fix{{IssueID: "d7", AfterCode: "y"}})

	assert.Equal(t, domain.PatchFailed, outcomes[0].Status)
	assert.Equal(t, domain.ReasonEmptyBeforeCode, outcomes[0].Reason)
}

func TestApplyFixes_Deterministic(t *testing.T) {
	build := func() []domain.Fix {
		return []domain.Fix{
			imgFix(),
			{IssueID: "d8", LineStart: 3, LineEnd: 3, BeforeCode: "</body>", AfterCode: "<footer></footer>\n</body>"},
		}
	}
	engine := patch.NewEngine()

	a, outA := engine.ApplyFixes(imgPage, build())
	b, outB := engine.ApplyFixes(imgPage, build())

	assert.Equal(t, a, b)
	assert.Equal(t, outA, outB)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.6, patch.Ratio("abc", "abcdefg"))
	assert.Equal(t, 1.0, patch.Ratio("", ""))
	assert.Equal(t, 0.0, patch.Ratio("abc", "xyz"))
}
