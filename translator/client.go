// Package translator implements the streaming chat-completion translation
// client with a persistent per-chapter cache.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Disya123/Books-Translate/config"
	"github.com/Disya123/Books-Translate/log"
	"github.com/Disya123/Books-Translate/model"
	"github.com/Disya123/Books-Translate/store"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config holds the remote endpoint settings for one client.
type Config struct {
	APIKey       string
	APIURL       string
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	TopP         float64
	Timeout      time.Duration
}

// FromOptions builds a client config from the loaded server options.
func FromOptions(opts *config.Options) Config {
	return Config{
		APIKey:       opts.APIKey,
		APIURL:       opts.APIURL,
		Model:        opts.ModelName,
		SystemPrompt: opts.SystemPrompt,
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
		TopP:         opts.TopP,
		Timeout:      time.Duration(opts.RequestTimeout) * time.Second,
	}
}

// Request is one chapter translation job.
type Request struct {
	ChapterID  int
	SourceLang string
	TargetLang string
	TargetCode string
	Content    string
}

// OnChunk receives the accumulated translated text after every streamed
// fragment, so a consumer renders by replacing rather than appending.
type OnChunk func(accumulated string)

type Client struct {
	store      *store.Store
	cfg        Config
	httpClient *http.Client
}

func New(s *store.Store, cfg Config) *Client {
	return &Client{
		store: s,
		cfg:   cfg,
		// Streaming responses are long-lived, the per-call context owns the
		// deadline instead of the http client.
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// Translate returns the translated chapter text, from cache when possible.
// A cache hit never touches the network.
func (c *Client) Translate(ctx context.Context, req Request, onChunk OnChunk) (string, error) {
	cached, err := c.store.GetCachedTranslation(req.ChapterID, req.TargetCode)
	if err != nil {
		return "", errors.Wrap(err, "failed to check translation cache")
	}
	if cached != nil {
		if onChunk != nil {
			onChunk(cached.TranslatedContent)
		}
		return cached.TranslatedContent, nil
	}

	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", errors.New("translation api key is not configured")
	}

	translated, err := c.translateStream(ctx, req, onChunk)
	if err != nil {
		return "", err
	}

	if _, err := c.store.SaveCachedTranslation(&model.TranslationCache{
		ChapterID:         req.ChapterID,
		SourceLang:        req.SourceLang,
		TargetLang:        req.TargetLang,
		TargetCode:        req.TargetCode,
		TranslatedContent: translated,
	}); err != nil {
		return "", errors.Wrap(err, "failed to cache translation")
	}
	return translated, nil
}

func (c *Client) translateStream(ctx context.Context, req Request, onChunk OnChunk) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "user", Content: c.buildPrompt(req)},
		},
		Stream:      true,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		TopP:        c.cfg.TopP,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode translation request")
	}

	url := strings.TrimSuffix(strings.TrimSpace(c.cfg.APIURL), "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to build translation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	log.Debug("Requesting translation",
		zap.String("url", url),
		zap.String("model", c.cfg.Model),
		zap.Int("chapterID", req.ChapterID))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "network error, check the connection")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return "", errors.Errorf("translation failed (status %d): %s",
			resp.StatusCode, parseErrorMessage(string(raw)))
	}

	// Signal stream start with an empty accumulator
	if onChunk != nil {
		onChunk("")
	}

	var translated strings.Builder
	decoder := &streamDecoder{}
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, fragment := range decoder.Feed(buf[:n]) {
				translated.WriteString(fragment)
				if onChunk != nil {
					onChunk(translated.String())
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", errors.Wrap(readErr, "translation stream interrupted")
		}
	}

	log.Debug("Translation stream finished",
		zap.Int("chapterID", req.ChapterID),
		zap.Int("length", translated.Len()))
	return translated.String(), nil
}

func (c *Client) buildPrompt(req Request) string {
	return fmt.Sprintf(
		"Translate the following fiction text from %s into %s, preserving literary style and tone.\n\nText to translate:\n%s",
		req.SourceLang, req.TargetLang, req.Content)
}

// parseErrorMessage extracts a readable message from an error response body.
// Oversized bodies are usually HTML from a wrong endpoint.
func parseErrorMessage(body string) string {
	if strings.HasPrefix(strings.TrimSpace(body), "{") {
		var parsed struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(body), &parsed); err == nil {
			if parsed.Error.Message != "" {
				return parsed.Error.Message
			}
			if parsed.Message != "" {
				return parsed.Message
			}
		}
	}

	if len(body) > 500 {
		return "invalid server url or api key, check the settings"
	}
	if strings.TrimSpace(body) == "" {
		return "unknown error"
	}
	return body
}
