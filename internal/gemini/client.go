// Package gemini implements translation through Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/tguserbot/internal/config"
)

// ErrSameLanguage is returned when the text is already in the target language.
var ErrSameLanguage = errors.New("text is already in the target language")

// Client defines the AI operations used by the bot.
type Client interface {
	// Translate translates text into targetLanguage.
	Translate(ctx context.Context, text, targetLanguage string) (*Translation, error)
}

// Translation is the result of a successful translation.
type Translation struct {
	SourceLanguage string
	Text           string
}

// contentGenerator is satisfied by genai.Client.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type sdkClient struct {
	models        contentGenerator
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	maxRetries    int
	retryDelay    time.Duration
}

// NewClient creates a Gemini client for the configured model.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	c := newClient(gi.Models, cfg, log)
	c.log.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return c, nil
}

func newClient(models contentGenerator, cfg config.GeminiConfig, log *slog.Logger) *sdkClient {
	if log == nil {
		log = slog.Default()
	}
	temperature := cfg.Temperature
	return &sdkClient{
		models: models,
		log:    log.With("component", "gemini_client"),
		contentConfig: &genai.GenerateContentConfig{
			Temperature:       &temperature,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: TranslatorSystemInstruction}}},
			ResponseMIMEType:  "application/json",
			ResponseSchema:    translationSchema,
		},
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}
}

var translationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"source_language": {Type: genai.TypeString, Description: "English name of the language the input is written in."},
		"same_language":   {Type: genai.TypeBoolean, Description: "True when the input is already in the target language."},
		"text":            {Type: genai.TypeString, Description: "The translated text. Empty when same_language is true."},
	},
	Required: []string{"source_language", "same_language", "text"},
}

type translationResponse struct {
	SourceLanguage string `json:"source_language"`
	SameLanguage   bool   `json:"same_language"`
	Text           string `json:"text"`
}

// Translate asks the model for a structured translation of text.
func (c *sdkClient) Translate(ctx context.Context, text, targetLanguage string) (*Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("nothing to translate")
	}
	if targetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}
	c.log.DebugContext(ctx, "Translating text", "length", len(text), "target_language", targetLanguage)

	prompt := fmt.Sprintf(TranslatePromptFormat, targetLanguage, text)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, contents, c.contentConfig)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}

	raw, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	var parsed translationResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse translation JSON", "error", err, "response_text", raw)
		return nil, fmt.Errorf("invalid translation JSON received: %w", err)
	}

	if parsed.SameLanguage || strings.EqualFold(parsed.SourceLanguage, targetLanguage) {
		return nil, ErrSameLanguage
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return nil, fmt.Errorf("translation response has empty text")
	}

	return &Translation{SourceLanguage: parsed.SourceLanguage, Text: parsed.Text}, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var err error
	for i := 0; i <= c.maxRetries; i++ {
		var resp *genai.GenerateContentResponse
		resp, err = c.models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		code, retriable := retriableCode(err)
		if !retriable {
			c.log.ErrorContext(ctx, "Gemini API call failed with non-retriable error", "error", err)
			return nil, fmt.Errorf("gemini API call failed: %w", err)
		}
		if i == c.maxRetries {
			break
		}

		c.log.WarnContext(ctx, "Retrying Gemini API call", "attempt", i+1, "max_retries", c.maxRetries, "code", code, "delay", c.retryDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}

	c.log.ErrorContext(ctx, "Gemini API call failed after max retries", "error", err)
	return nil, fmt.Errorf("gemini API call failed after %d retries: %w", c.maxRetries, err)
}

// retriableCode reports whether err is a transient server-side APIError.
func retriableCode(err error) (int, bool) {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	return apiErr.Code, apiErr.Code == 429 || apiErr.Code == 500 || apiErr.Code == 503
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("gemini returned no response")
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("translation blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("translation returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("translation returned empty text")
	}
	return text, nil
}
