package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"learnsphere_backend/internal/config"
	"learnsphere_backend/internal/util"

	"google.golang.org/genai"
)

// ChatMessage is one turn of a tutor conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Generator is the generative-AI collaborator consumed by the course and
// quiz services. Implemented by AIService; test doubles implement it with
// canned output.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error)
	Chat(ctx context.Context, system string, history []ChatMessage, message string) (string, error)
}

// AIService wraps the Gemini SDK for structured course/quiz generation
// and the tutor chat.
type AIService struct {
	client *genai.Client
	model  string
}

func NewAIService(ctx context.Context, cfg config.AIConfig) (*AIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &AIService{client: client, model: model}, nil
}

// GenerateJSON asks the model for JSON constrained by the given schema
// and returns the repaired raw document. Malformed output that survives
// repair is reported as util.ErrAIMalformedOutput.
func (s *AIService) GenerateJSON(ctx context.Context, prompt string, schema map[string]any) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if schema != nil {
		cfg.ResponseSchema = buildGeminiSchema(schema)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrAIUnavailable, err)
	}

	repaired, err := RepairJSON(result.Text())
	if err != nil {
		return nil, err
	}
	return repaired, nil
}

// Chat runs one tutor-chat turn with optional history.
func (s *AIService) Chat(ctx context.Context, system string, history []ChatMessage, message string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for _, h := range history {
		role := "user"
		if h.Role == "model" || h.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: h.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: message}},
	})

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrAIUnavailable, err)
	}
	return result.Text(), nil
}

var (
	fenceRe         = regexp.MustCompile("```(?:json)?")
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// RepairJSON applies the best-effort structural fixes models commonly
// need: markdown fences, prose around the document, trailing commas. It
// never touches well-formed input beyond trimming.
func RepairJSON(raw string) (json.RawMessage, error) {
	text := fenceRe.ReplaceAllString(raw, "")
	text = strings.TrimSpace(text)

	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}

	// Cut to the outermost object or array.
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "}]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	text = trailingCommaRe.ReplaceAllString(text, "$1")

	if !json.Valid([]byte(text)) {
		return nil, util.ErrAIMalformedOutput
	}
	return json.RawMessage(text), nil
}

// buildGeminiSchema converts a JSON Schema definition map to the SDK's
// schema type. Unknown constructs are ignored rather than rejected.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapGeminiType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildGeminiSchema(propDef)
			}
		}
	}

	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if enums, ok := def["enum"].([]any); ok {
		for _, e := range enums {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}

	return schema
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
