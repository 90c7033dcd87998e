// Package rag is the HTTP client for the document ingestion backend that
// chunks uploaded files and indexes them for retrieval.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nvoss/agent-chat/internal/config"
)

const defaultTimeout = 60 * time.Second

// Client talks to the RAG ingestion service
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new RAG client
func NewClient(cfg config.RAGConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type ingestRequest struct {
	FilePath string         `json:"file_path"`
	UserID   string         `json:"user_id,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IngestResult reports what the ingestion service made of one document
type IngestResult struct {
	Success       bool     `json:"success"`
	Filename      string   `json:"filename"`
	ChunksCreated int      `json:"chunks_created"`
	DocumentIDs   []string `json:"document_ids"`
	UserID        string   `json:"user_id"`
	Error         string   `json:"error"`
}

// Stats describes the ingestion service's document collection
type Stats struct {
	Success          bool   `json:"success"`
	CollectionName   string `json:"collection_name"`
	TotalDocuments   int    `json:"total_documents"`
	PersistDirectory string `json:"persist_directory"`
	Error            string `json:"error"`
}

// Ingest asks the RAG service to chunk and index the file at filePath.
// The path must be reachable by the RAG process; both sides share the
// uploads directory.
func (c *Client) Ingest(ctx context.Context, filePath, userID string, metadata map[string]any) (*IngestResult, error) {
	body, err := json.Marshal(ingestRequest{
		FilePath: filePath,
		UserID:   userID,
		Metadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rag service returned status %d", resp.StatusCode)
	}

	var result IngestResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("ingestion failed: %s", result.Error)
	}

	return &result, nil
}

// GetStats fetches the ingestion service's collection statistics
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rag service returned status %d", resp.StatusCode)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !stats.Success {
		return nil, fmt.Errorf("stats failed: %s", stats.Error)
	}

	return &stats, nil
}
