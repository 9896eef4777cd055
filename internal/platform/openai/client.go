package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/admatch-backend/internal/platform/envutil"
	"github.com/yungbote/admatch-backend/internal/platform/logger"
)

// RawEntry is one product listing as the vision model reports it. Price is
// kept raw because models occasionally emit strings ("2,49", "invalid") where
// a number belongs; the page extractor owns the coercion.
type RawEntry struct {
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Discount *string         `json:"discount"`
	Brand    *string         `json:"brand"`
}

// Client is the extraction oracle: page image bytes in, candidate product
// listings out.
type Client interface {
	ExtractListings(ctx context.Context, image []byte, mimeType string) ([]RawEntry, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_VISION_MODEL"))
	if model == "" {
		model = "gpt-4o"
	}

	return &client{
		log:        log.With("service", "OpenAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		maxRetries: envutil.Int("OPENAI_MAX_RETRIES", 2),
	}, nil
}

const extractionSystemPrompt = `You read one scanned page of a retailer advertisement.
Extract every distinct product listing visible on the page.
Respond with a JSON object of the form
{"entries": [{"name": string, "price": number, "discount": string|null, "brand": string|null}]}.
The name is the product description as printed. The price is the advertised
price as a number. Use null for discount or brand when not printed.`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *client) ExtractListings(ctx context.Context, image []byte, mimeType string) ([]RawEntry, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Extract the product listings from this advertisement page."},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			}},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	raw, err := c.doWithRetry(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Entries []RawEntry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction output: %w", err)
	}
	return parsed.Entries, nil
}

func (c *client) doWithRetry(ctx context.Context, reqBody chatRequest) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 2 * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		// 429 and 5xx are worth another try; anything else 4xx is not.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("openai status=%d body=%s", resp.StatusCode, truncate(string(body), 256))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("openai status=%d body=%s", resp.StatusCode, truncate(string(body), 256))
		}

		var cr chatResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			return "", fmt.Errorf("decode openai response: %w", err)
		}
		if cr.Error != nil {
			return "", fmt.Errorf("openai error: %s", cr.Error.Message)
		}
		if len(cr.Choices) == 0 {
			return "", fmt.Errorf("openai returned no choices")
		}
		return cr.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("openai request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
