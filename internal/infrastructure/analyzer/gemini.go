// Package analyzer implements the Analyzer Adapter over Gemini,
// grounded on spigell-hh-responder/internal/ai/gemini's Matcher and
// Generator: a content generator interface wraps genai.Client, a
// //go:embed prompt template is filled in per call, and the response
// is parsed by extracting the first JSON object found in the text.
package analyzer

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"context"

	"google.golang.org/genai"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/objectstore"
)

//go:embed prompt.md
var promptTemplate string

// Result is the reference scoring shape stored verbatim under
// Item.Result; the engine never interprets these fields itself.
type Result struct {
	FitScore       float64  `json:"fit_score"`
	Strengths      []string `json:"strengths"`
	Gaps           []string `json:"gaps"`
	Recommendation string   `json:"recommendation"`
	RawText        string   `json:"raw_text"`
}

// contentGenerator is the narrow collaborator GeminiAnalyzer depends
// on, matching the teacher's contentGenerator interface so tests can
// substitute a fake without a live client.
type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiAnalyzer implements domain.Analyzer by fetching item bytes
// from the Object Store Gateway, prompting Gemini with the job
// description, and parsing a JSON scoring object out of the
// response.
type GeminiAnalyzer struct {
	generator contentGenerator
	objects   *objectstore.BlobGateway
}

// NewGeminiAnalyzer constructs a GeminiAnalyzer over an already-
// configured genai client and the Object Store Gateway it reads item
// bytes from.
func NewGeminiAnalyzer(client *genai.Client, model string, objects *objectstore.BlobGateway) *GeminiAnalyzer {
	return &GeminiAnalyzer{generator: &clientGenerator{client: client, model: model}, objects: objects}
}

// Analyze implements domain.Analyzer.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, fileRef, jobDescription string) ([]byte, domain.ErrorClass, string, error) {
	raw, err := a.objects.Get(ctx, fileRef)
	if err != nil {
		return nil, domain.ErrorClassTransient, "", fmt.Errorf("fetch %s: %w", fileRef, err)
	}

	prompt := buildPrompt(jobDescription, string(raw))
	text, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, classifyGenAIError(err), "", err
	}

	result, parseErr := parseResponse(text)
	if parseErr != nil {
		return nil, domain.ErrorClassPermanent, parseErr.Error(), nil
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, domain.ErrorClassPermanent, "marshal result", nil
	}
	return encoded, domain.ErrorClassNone, "", nil
}

func buildPrompt(jobDescription, resumeText string) string {
	p := strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
	return strings.ReplaceAll(p, "{{RESUME_TEXT}}", resumeText)
}

// parseResponse extracts the first JSON object in text, matching the
// teacher's extractJSON/coerce* split for responses that arrive
// wrapped in markdown fences or surrounding prose.
func parseResponse(text string) (Result, error) {
	block := extractJSON(text)
	if block == "" {
		return Result{}, errors.New("no JSON object found in analyzer response")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Result{}, fmt.Errorf("decode analyzer JSON: %w", err)
	}

	return Result{
		FitScore:       coerceFloat(raw["fit_score"]),
		Strengths:      coerceStringSlice(raw["strengths"]),
		Gaps:           coerceStringSlice(raw["gaps"]),
		Recommendation: coerceString(raw["recommendation"]),
		RawText:        text,
	}, nil
}

func extractJSON(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}

func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case json.Number:
		f, _ := t.Float64()
		return f
	default:
		return 0
	}
}

func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

func coerceStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// classifyGenAIError maps genai SDK errors into the engine's
// transient/permanent taxonomy: rate-limit and server-busy statuses
// are transient, everything else is permanent, per spec.md §4.4.
func classifyGenAIError(err error) domain.ErrorClass {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 503:
			return domain.ErrorClassTransient
		}
	}
	return domain.ErrorClassPermanent
}

// clientGenerator adapts *genai.Client to contentGenerator.
type clientGenerator struct {
	client *genai.Client
	model  string
}

func (g *clientGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response from analyzer")
	}
	return sb.String(), nil
}
