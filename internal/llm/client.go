package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"classpulse/internal/config"
	"classpulse/internal/model"
)

// SentimentCompletion is the structured result of a sentiment completion.
// Optional fields default to empty slices, never nil.
type SentimentCompletion struct {
	OverallScore    float64  `json:"overall_score"`
	Confidence      float64  `json:"confidence"`
	PositivePoints  []string `json:"positive_points"`
	NegativePoints  []string `json:"negative_points"`
	Recommendations []string `json:"recommendations"`
}

// Client talks to the OpenAI API for completions and embeddings. Calls are
// retried with exponential backoff before surfacing a ProviderError.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	maxRetries     int
	logger         *zap.Logger
}

func NewClient(cfg config.OpenAIConfig, logger *zap.Logger) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Client{
		client:         openai.NewClient(cfg.APIKey),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     maxRetries,
		logger:         logger,
	}
}

// AnalyzeSentiment scores a batch of response texts for one subject.
func (c *Client) AnalyzeSentiment(ctx context.Context, subjectName string, responses []string) (*SentimentCompletion, error) {
	prompt := buildSentimentPrompt(subjectName, responses)

	raw, err := c.complete(ctx, "sentiment analysis", prompt)
	if err != nil {
		return nil, err
	}

	var result SentimentCompletion
	if err := json.Unmarshal([]byte(stripFence(raw)), &result); err != nil {
		return nil, &model.ProviderError{Op: "sentiment analysis", Err: fmt.Errorf("malformed completion: %w", err)}
	}

	if result.Confidence == 0 {
		result.Confidence = 0.7
	}
	if result.PositivePoints == nil {
		result.PositivePoints = []string{}
	}
	if result.NegativePoints == nil {
		result.NegativePoints = []string{}
	}
	if result.Recommendations == nil {
		result.Recommendations = []string{}
	}
	return &result, nil
}

// GenerateClusterLabel produces a 2-4 word theme label from example texts.
func (c *Client) GenerateClusterLabel(ctx context.Context, examples []string) (string, error) {
	var sb strings.Builder
	for _, ex := range examples {
		sb.WriteString("- ")
		sb.WriteString(truncate(ex, 100))
		sb.WriteString("\n")
	}

	prompt := fmt.Sprintf(`These are student feedback responses that share a common theme.

Responses:
%s
Reply with a short label (2-4 words) naming the theme. Label only, no quotes, no explanation.`, sb.String())

	raw, err := c.complete(ctx, "cluster labeling", prompt)
	if err != nil {
		return "", err
	}

	label := strings.Trim(strings.TrimSpace(raw), `"'`)
	return truncate(label, 50), nil
}

// ExtractKeywords pulls 3-5 representative keywords from response texts.
func (c *Client) ExtractKeywords(ctx context.Context, texts []string) ([]string, error) {
	combined := truncate(strings.Join(texts, " "), 500)

	prompt := fmt.Sprintf(`Extract 3-5 main keywords from these student feedback responses.

Responses: %s

Reply with the keywords only, comma-separated.`, combined)

	raw, err := c.complete(ctx, "keyword extraction", prompt)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, 5)
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			keywords = append(keywords, kw)
		}
		if len(keywords) == 5 {
			break
		}
	}
	return keywords, nil
}

// Complete runs a freeform prompt and returns the trimmed text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, "completion", prompt)
}

// EmbedText generates an embedding vector for a text.
func (c *Client) EmbedText(ctx context.Context, text string) ([]float64, error) {
	var resp openai.EmbeddingResponse
	err := c.withRetry(ctx, "embedding", func() error {
		var err error
		resp, err = c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, &model.ProviderError{Op: "embedding", Err: fmt.Errorf("empty embedding response")}
	}

	vector := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vector[i] = float64(v)
	}
	return vector, nil
}

func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	var resp openai.ChatCompletionResponse
	err := c.withRetry(ctx, op, func() error {
		var err error
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &model.ProviderError{Op: op, Err: fmt.Errorf("empty completion response")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := 500 * time.Millisecond

	var err error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &model.ProviderError{Op: op, Err: ctx.Err()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err = fn(); err == nil {
			return nil
		}
		c.logger.Warn("provider call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return &model.ProviderError{Op: op, Err: err}
}

func buildSentimentPrompt(subjectName string, responses []string) string {
	var sb strings.Builder
	for _, r := range responses {
		sb.WriteString("- ")
		sb.WriteString(r)
		sb.WriteString("\n\n")
	}

	return fmt.Sprintf(`You are analyzing student feedback for the course "%s". Return ONLY valid JSON matching this schema:
{
  "overall_score": -1.0 to 1.0,
  "confidence": 0.0 to 1.0,
  "positive_points": ["short phrase", ...],
  "negative_points": ["short phrase", ...],
  "recommendations": ["actionable suggestion for the instructor", ...]
}

Student responses:
%s
Score the overall sentiment across all responses, list the main positive and negative points as short phrases, and give up to 5 recommendations.`, subjectName, sb.String())
}

// stripFence removes a markdown code fence if the model wrapped its JSON.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// truncate cuts at a rune boundary so multi-byte text is never left with a
// dangling partial character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
