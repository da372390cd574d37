// Package hf calls the HuggingFace inference API's extractive QA endpoint.
// It works keyless on the free tier; an API key only raises the quota.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultModelURL points at an extractive QA model that answers from a
// supplied context passage.
const DefaultModelURL = "https://api-inference.huggingface.co/models/deepset/roberta-base-squad2"

// maxContextChars hard-truncates the context; the free tier rejects large
// payloads and the QA model's window is tiny compared to chat providers.
const maxContextChars = 500

// ErrNoAnswer is returned when the model found no answer span.
var ErrNoAnswer = errors.New("no answer returned")

type Client struct {
	modelURL string
	apiKey   string
	http     *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		modelURL: DefaultModelURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 20 * time.Second},
	}
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
}

// Answer asks the QA model the question against a truncated context.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	if runes := []rune(contextText); len(runes) > maxContextChars {
		contextText = string(runes[:maxContextChars])
	}

	body, err := json.Marshal(qaRequest{Inputs: qaInputs{Question: question, Context: contextText}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference endpoint returned HTTP %d", resp.StatusCode)
	}

	var out qaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("inference response decode failed: %w", err)
	}

	answer := strings.TrimSpace(out.Answer)
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}
