// Package llm implements the generic remediation fallback on an
// OpenAI-compatible chat completions API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/abdidvp/pourfix/internal/config"
	"github.com/abdidvp/pourfix/internal/domain"
)

const defaultMaxTokens = 1000

var categoryFocus = map[domain.Category]string{
	domain.CategoryPerceivable:    "text alternatives, captions, color contrast and content that must be perceivable by every user",
	domain.CategoryOperable:       "keyboard access, focus management, accessible names on interactive controls and enough time to act",
	domain.CategoryUnderstandable: "page language, heading structure, form instructions and error identification",
	domain.CategoryRobust:         "valid markup, correct ARIA roles and properties and semantic HTML landmarks",
}

// reply is the structured response requested from the model.
type reply struct {
	BeforeCode  string  `json:"before_code" jsonschema:"description=Exact code to replace, copied from the snippet"`
	AfterCode   string  `json:"after_code" jsonschema:"description=Replacement code"`
	Confidence  float64 `json:"confidence" jsonschema:"description=Confidence between 0 and 1"`
	Explanation string  `json:"explanation" jsonschema:"description=One sentence explaining the fix"`
}

// Suggester implements domain.FixSuggester.
type Suggester struct {
	client    openai.Client
	model     string
	maxTokens int
	schema    any
}

// New creates a Suggester from cfg. Extra request options are appended
// after the configured ones.
func New(cfg config.OpenAIConfig, opts ...option.RequestOption) *Suggester {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	reflector := jsonschema.Reflector{AllowAdditionalProperties: false, DoNotReference: true}
	return &Suggester{
		client:    openai.NewClient(reqOpts...),
		model:     model,
		maxTokens: defaultMaxTokens,
		schema:    reflector.Reflect(&reply{}),
	}
}

func (s *Suggester) SuggestFix(ctx context.Context, category domain.Category, d domain.Defect) (*domain.Suggestion, error) {
	params := openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(category)),
			openai.UserMessage(userPrompt(d)),
		},
		MaxTokens:   openai.Int(int64(s.maxTokens)),
		Temperature: openai.Float(0.1),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "accessibility_fix",
					Schema: s.schema,
					Strict: openai.Bool(true),
				},
			},
		},
	}

	start := time.Now()
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}
	slog.DebugContext(ctx, "fix suggestion completed",
		"model", s.model,
		"defect_id", d.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	r, err := ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return &domain.Suggestion{
		BeforeCode:  r.BeforeCode,
		AfterCode:   r.AfterCode,
		Confidence:  r.Confidence,
		Explanation: r.Explanation,
	}, nil
}

// ParseReply decodes a model reply, tolerating a fenced code block around
// the JSON object.
func ParseReply(content string) (*domain.Suggestion, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	var r reply
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if strings.TrimSpace(r.AfterCode) == "" {
		return nil, fmt.Errorf("response has no after_code")
	}
	return &domain.Suggestion{
		BeforeCode:  r.BeforeCode,
		AfterCode:   r.AfterCode,
		Confidence:  r.Confidence,
		Explanation: r.Explanation,
	}, nil
}

func systemPrompt(category domain.Category) string {
	focus, ok := categoryFocus[category]
	if !ok {
		focus = "WCAG 2.1 AA conformance"
	}
	return "You fix web accessibility defects in HTML, JSX, TSX and CSS. " +
		"This defect belongs to the " + string(category) + " principle; focus on " + focus + ". " +
		"Change as little code as possible. before_code must be copied verbatim from the snippet. " +
		"Reply with JSON only."
}

func userPrompt(d domain.Defect) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (lines %d-%d)\n", d.FilePath, d.LineStart, d.LineEnd)
	if d.RuleID != "" {
		fmt.Fprintf(&b, "Rule: %s\n", d.RuleID)
	}
	fmt.Fprintf(&b, "Severity: %s\n", d.Severity)
	fmt.Fprintf(&b, "Issue: %s\n\n", d.Description)
	b.WriteString("Snippet:\n")
	b.WriteString(d.CodeSnippet)
	return b.String()
}
