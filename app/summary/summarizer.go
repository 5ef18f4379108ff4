package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type Level string

const (
	LevelBrief    Level = "brief"
	LevelStandard Level = "standard"
	LevelDetailed Level = "detailed"
)

// ParseLevel maps a stored level string to a Level, defaulting to standard.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelBrief, LevelStandard, LevelDetailed:
		return Level(s)
	default:
		return LevelStandard
	}
}

type levelConfig struct {
	sentences int
	maxTokens int
}

var levelConfigs = map[Level]levelConfig{
	LevelBrief:    {sentences: 2, maxTokens: 150},
	LevelStandard: {sentences: 4, maxTokens: 300},
	LevelDetailed: {sentences: 8, maxTokens: 500},
}

type Result struct {
	Text      string
	Method    string // "openai" or "fallback"
	WordCount int
}

// Summarizer produces article summaries and keywords. It never returns an
// error: when the OpenAI client is unconfigured or fails, it degrades to a
// local extractive method, so callers can treat it as non-failing.
type Summarizer struct {
	client  *openai.Client
	enabled bool
}

func NewSummarizer(apiKey string) *Summarizer {
	s := &Summarizer{}

	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
		s.enabled = true
	}

	slog.Info("Summarizer initialized", "openai_enabled", s.enabled)

	return s
}

func (s *Summarizer) Summarize(ctx context.Context, text string, level Level) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Text: "No content available for summarization.", Method: "fallback"}
	}

	if s.enabled {
		result, err := s.summarizeWithOpenAI(ctx, text, level)
		if err == nil {
			return result
		}
		slog.Warn("OpenAI summarization failed, using fallback", "error", err)
	}

	return fallbackSummarize(text, level)
}

func (s *Summarizer) summarizeWithOpenAI(ctx context.Context, text string, level Level) (Result, error) {
	cfg, ok := levelConfigs[level]
	if !ok {
		cfg = levelConfigs[LevelStandard]
	}

	prompt := fmt.Sprintf(
		"Please summarize the following news article in exactly %d sentences. Make it clear, concise, and informative:\n\n%s",
		cfg.sentences, text)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a professional news summarizer. Create accurate, concise summaries that capture the key information.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   cfg.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return Result{}, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("chat completion returned no choices")
	}

	text = strings.TrimSpace(resp.Choices[0].Message.Content)

	return Result{
		Text:      text,
		Method:    "openai",
		WordCount: len(strings.Fields(text)),
	}, nil
}

// ExtractKeywords returns up to maxCount keywords for the text. Like
// Summarize, it degrades to a frequency-based local method instead of failing.
func (s *Summarizer) ExtractKeywords(ctx context.Context, text string, maxCount int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if s.enabled {
		keywords, err := s.keywordsWithOpenAI(ctx, text, maxCount)
		if err == nil {
			return keywords
		}
		slog.Warn("OpenAI keyword extraction failed, using fallback", "error", err)
	}

	return fallbackKeywords(text, maxCount)
}

func (s *Summarizer) keywordsWithOpenAI(ctx context.Context, text string, maxCount int) ([]string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Extract the most important keywords from the given text. Return only the keywords separated by commas, no explanations.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Extract %d key terms from this text:\n\n%s", maxCount, text),
			},
		},
		MaxTokens:   100,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	var keywords []string
	for _, part := range strings.Split(resp.Choices[0].Message.Content, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keywords = append(keywords, part)
		}
	}

	if len(keywords) > maxCount {
		keywords = keywords[:maxCount]
	}

	return keywords, nil
}
