//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package emb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama - remote encoder speaking the ollama /api/embed protocol
type Ollama struct {
	URL       string
	Model     string
	BatchSize int
	client    *http.Client
	dim       int
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func NewOllama(url string, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		URL:       strings.TrimRight(url, "/"),
		Model:     model,
		BatchSize: 64,
		client:    &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Dimensions() int { return o.dim }

func (o *Ollama) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	bs := o.BatchSize
	if bs <= 0 {
		bs = len(texts)
	}
	for start := 0; start < len(texts); start += bs {
		end := start + bs
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := o.post(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (o *Ollama) post(ctx context.Context, texts []string) ([][]float64, error) {
	const (
		ENDPOINT = "/api/embed"
		FAIL1    = "ollama: marshal request: %w"
		FAIL2    = "ollama: post request: %w"
		FAIL3    = "ollama: unexpected status: %d"
		FAIL4    = "ollama: decode response: %w"
		FAIL5    = "ollama: asked for %d embeddings, got %d"
	)

	body, err := json.Marshal(ollamaRequest{Model: o.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf(FAIL1, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL+ENDPOINT, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(FAIL2, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(FAIL3, resp.StatusCode)
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf(FAIL4, err)
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, fmt.Errorf(FAIL5, len(texts), len(parsed.Embeddings))
	}
	if len(parsed.Embeddings) > 0 {
		o.dim = len(parsed.Embeddings[0])
	}
	return parsed.Embeddings, nil
}
