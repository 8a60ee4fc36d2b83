package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"indigo/internal/metrics"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

const (
	// BusyReply is shown when the model answers with no text.
	BusyReply = "סליחה, אני עסוק מדי בהכנת קפה כרגע. נסו שוב עוד רגע!"
	// FailureReply is shown when the call fails for any reason.
	FailureReply = "נראה שיש לנו תקלה קטנה במכונת האספרסו הדיגיטלית. בחרו משהו שטעים לכם!"

	defaultBaseURL = "https://generativelanguage.googleapis.com"
)

var errNoAPIKey = errors.New("assistant api key is not configured")

// Config configures the Gemini generateContent endpoint.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	TopP        float64
	HTTPClient  *http.Client
}

// Client asks Gemini for a recommendation. It never returns an error.
type Client struct {
	cfg    Config
	logger *zerolog.Logger
}

func NewClient(cfg Config, logger *zerolog.Logger) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = models.DefaultAssistantModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, logger: logger}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Recommend returns the model's free text, or one of the fixed apologies.
func (c *Client) Recommend(ctx context.Context, mood string, items []models.MenuItem) string {
	text, err := c.generate(ctx, BuildPrompt(mood, items))
	if err != nil {
		metrics.IncRecommendation("error")
		c.logger.Error().Err(err).Msg("AI Error")
		return FailureReply
	}
	if strings.TrimSpace(text) == "" {
		metrics.IncRecommendation("empty")
		return BusyReply
	}
	metrics.IncRecommendation("ok")
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errNoAPIKey
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("generate request status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}

	if len(out.Candidates) == 0 {
		return "", nil
	}

	// Only the first candidate is shown.
	var b strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
