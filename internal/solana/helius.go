package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HeliusClient queries the Helius DAS API for assets owned by a wallet.
type HeliusClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	log        *zap.Logger
}

func NewHeliusClient(endpoint, apiKey string, timeoutMS, maxRetries int, log *zap.Logger) *HeliusClient {
	return &HeliusClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		maxRetries: maxRetries,
		retryDelay: 500 * time.Millisecond,
		log:        log,
	}
}

type Asset struct {
	ID       string `json:"id"` // mint address
	Grouping []struct {
		GroupKey   string `json:"group_key"`
		GroupValue string `json:"group_value"`
	} `json:"grouping"`
	Content struct {
		Metadata struct {
			Name       string `json:"name"`
			Attributes []struct {
				TraitType string `json:"trait_type"`
				Value     any    `json:"value"`
			} `json:"attributes"`
		} `json:"metadata"`
		Files []struct {
			URI string `json:"uri"`
		} `json:"files"`
	} `json:"content"`
}

// InCollection reports whether the asset belongs to the given verified
// collection per its grouping entries.
func (a Asset) InCollection(collection string) bool {
	for _, g := range a.Grouping {
		if g.GroupKey == "collection" && g.GroupValue == collection {
			return true
		}
	}
	return false
}

// GetAssetsByOwner returns all assets the wallet owns. Collection filtering
// happens in the caller; the DAS response is returned as-is.
func (c *HeliusClient) GetAssetsByOwner(ctx context.Context, owner string) ([]Asset, error) {
	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      "worldbinder-scan",
		"method":  "getAssetsByOwner",
		"params": map[string]any{
			"ownerAddress": owner,
			"page":         1,
			"limit":        1000,
		},
	})
	if err != nil {
		return nil, err
	}

	url := c.endpoint
	if c.apiKey != "" {
		url = fmt.Sprintf("%s/?api-key=%s", c.endpoint, c.apiKey)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("indexer unavailable: %w", err)
			continue
		}

		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("indexer rate limited")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("indexer returned %d: %s", resp.StatusCode, string(raw))
			continue
		}

		var envelope struct {
			Result struct {
				Items []Asset `json:"items"`
			} `json:"result"`
			Error *rpcError `json:"error"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			lastErr = err
			continue
		}
		if envelope.Error != nil {
			lastErr = fmt.Errorf("indexer error %d: %s", envelope.Error.Code, envelope.Error.Message)
			continue
		}
		return envelope.Result.Items, nil
	}

	c.log.Warn("asset scan failed after retries", zap.Error(lastErr))
	return nil, lastErr
}
