// Package openai is a typed HTTP client for the OpenAI API, covering the two
// endpoints DocVault needs: embeddings for semantic search and chat
// completions for keyword extraction and summaries.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/azatkul/docvault/internal/config"
)

const maxKeywords = 7

// Client talks to the OpenAI HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	embedModel string
	chatModel  string
}

// New builds a client from configuration. The config timeout bounds every
// request in addition to any caller-supplied context deadline.
func New(cfg config.OpenAIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		embedModel: cfg.EmbedModel,
		chatModel:  cfg.ChatModel,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingResponse
	err := c.post(ctx, "/v1/embeddings", embeddingRequest{
		Model: c.embedModel,
		Input: []string{text},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings response contained no data")
	}
	return resp.Data[0].Embedding, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Keywords asks the chat model for up to 7 comma-separated keywords.
func (c *Client) Keywords(ctx context.Context, text string) ([]string, error) {
	content, err := c.chat(ctx,
		"You are a keyword extraction expert. Return only keywords separated by commas.",
		"Extract 5-7 main keywords or topics from this text. "+
			"Return ONLY the keywords separated by commas, nothing else. "+
			"Keywords should be single words or short phrases (2-3 words max). "+
			"Text: "+text,
		100, 0.3)
	if err != nil {
		return nil, err
	}

	var keywords []string
	for _, part := range strings.Split(content, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords, nil
}

// Summarize asks the chat model for a 2-3 sentence summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.chat(ctx,
		"You are a document summarization expert. Provide clear, concise summaries.",
		"Summarize this document in 2-3 concise sentences. "+
			"Focus on the main topic and key points. "+
			"Be specific and informative. "+
			"Text: "+text,
		150, 0.5)
}

func (c *Client) chat(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	var resp chatResponse
	err := c.post(ctx, "/v1/chat/completions", chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
