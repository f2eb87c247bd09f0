// Package chain is the adapter to the external ledger backing the "real"
// mode: a JSON-RPC object store holding surveys, profiles and badges,
// mutated through signed move-call transactions. The local store remains
// the authority in demo mode; this package is the parallel backing path.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wnt/pollhub/internal/metrics"
)

const (
	maxCallRetries    = 5
	baseRetryDelay    = 250 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
	rateLimitCooldown = 5 * time.Minute
)

// Client talks JSON-RPC to a pool of chain endpoints with retries and
// backoff.
type Client struct {
	pool   *Pool
	logger zerolog.Logger
}

// NewClient creates a client over the given endpoint pool.
func NewClient(pool *Pool, logger zerolog.Logger) *Client {
	return &Client{
		pool:   pool,
		logger: logger.With().Str("component", "chain_client").Logger(),
	}
}

// Call performs a JSON-RPC method call, retrying transient failures with
// exponential backoff across the endpoint pool.
func (c *Client) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= maxCallRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1))
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				metrics.RecordChainRPCRequest("cancelled")
				return nil, ctx.Err()
			}
		}

		result, err := c.callOnce(ctx, method, params)
		if err == nil {
			metrics.RecordChainRPCRequest("success")
			return result, nil
		}
		lastErr = err

		c.logger.Warn().
			Err(err).
			Str("method", method).
			Int("attempt", attempt+1).
			Msg("Chain RPC call failed")
	}

	metrics.RecordChainRPCRequest("failed")
	return nil, fmt.Errorf("chain RPC %s failed after %d attempts: %w", method, maxCallRetries+1, lastErr)
}

// callOnce performs a single attempt against the next pooled endpoint.
func (c *Client) callOnce(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	client, endpoint, err := c.pool.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get RPC endpoint: %w", err)
	}

	if params == nil {
		params = []interface{}{}
	}
	requestBody, err := json.Marshal(rpcRequest{
		Jsonrpc: "2.0",
		ID:      "pollhub",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RPC request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := client.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		c.pool.MarkUnhealthy(endpoint)
		metrics.RecordChainRPCRequest("error")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		c.pool.SetCooldown(endpoint, rateLimitCooldown)
		metrics.RecordChainRPCRequest("rate_limited")
		return nil, fmt.Errorf("rate limited by endpoint %s: status %d", endpoint, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		c.pool.MarkUnhealthy(endpoint)
		return nil, fmt.Errorf("unexpected status code from %s: %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("RPC error from %s: code %d, message: %s",
			endpoint, rpcResp.Error.Code, rpcResp.Error.Message)
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Dur("duration", duration).
		Msg("Chain RPC call succeeded")

	c.pool.MarkHealthy(endpoint)
	return rpcResp.Result, nil
}

// GetOwnedObjects fetches every object of the given struct type owned by
// an address, following pagination cursors until the node reports no
// further pages.
func (c *Client) GetOwnedObjects(ctx context.Context, owner, structType string) ([]OwnedObject, error) {
	var objects []OwnedObject
	var cursor *string

	for {
		query := map[string]interface{}{
			"filter":  map[string]interface{}{"StructType": structType},
			"options": map[string]interface{}{"showContent": true, "showType": true},
		}
		params := []interface{}{owner, query}
		if cursor != nil {
			params = append(params, *cursor)
		}

		result, err := c.Call(ctx, "suix_getOwnedObjects", params...)
		if err != nil {
			return nil, err
		}

		var page ownedObjectsPage
		if err := json.Unmarshal(result, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal owned objects page: %w", err)
		}

		for _, item := range page.Data {
			if item.Data.Content.DataType != "moveObject" {
				continue
			}
			objects = append(objects, OwnedObject{
				ObjectID: item.Data.ObjectID,
				Type:     item.Data.Type,
				Fields:   item.Data.Content.Fields,
			})
		}

		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	return objects, nil
}

// GetObject fetches a single object by id. Returns found=false when the
// node reports the object as deleted or nonexistent.
func (c *Client) GetObject(ctx context.Context, objectID string) (OwnedObject, bool, error) {
	options := map[string]interface{}{"showContent": true, "showType": true}
	result, err := c.Call(ctx, "sui_getObject", objectID, options)
	if err != nil {
		return OwnedObject{}, false, err
	}

	var envelope struct {
		Data *struct {
			ObjectID string `json:"objectId"`
			Type     string `json:"type"`
			Content  struct {
				DataType string                 `json:"dataType"`
				Fields   map[string]interface{} `json:"fields"`
			} `json:"content"`
		} `json:"data"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(result, &envelope); err != nil {
		return OwnedObject{}, false, fmt.Errorf("failed to unmarshal object response: %w", err)
	}
	if envelope.Data == nil || envelope.Data.Content.DataType != "moveObject" {
		return OwnedObject{}, false, nil
	}

	return OwnedObject{
		ObjectID: envelope.Data.ObjectID,
		Type:     envelope.Data.Type,
		Fields:   envelope.Data.Content.Fields,
	}, true, nil
}
