// Package cloud mirrors the local snapshot to a remote document store.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/benkyo-app/benkyo/internal/item"
	"github.com/benkyo-app/benkyo/internal/store"
)

const DefaultMaxRetryAttempts = 3

type Client struct {
	httpClient       *resty.Client
	userID           string
	maxRetryAttempts uint
}

func NewClient(baseURL, apiKey, userID string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		userID:           userID,
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// stateDocument is the wire shape of a full snapshot. Items travel as raw JSON
// keyed by category so unknown variants survive a round trip on the server.
type stateDocument struct {
	Items        map[string][]json.RawMessage `json:"items"`
	ReviewEvents []item.ReviewEvent           `json:"review_events"`
	ErrorLog     []item.ErrorLogEntry         `json:"error_log"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

func (client *Client) withRetry(ctx context.Context, call func() error) error {
	return retry.Do(
		func() error {
			if err := call(); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Push replaces the remote state with the snapshot.
func (client *Client) Push(ctx context.Context, snap store.Snapshot) error {
	doc, err := encodeState(snap)
	if err != nil {
		return fmt.Errorf("encodeState() > %w", err)
	}
	return client.withRetry(ctx, func() error {
		return client.push(ctx, doc)
	})
}

func (client *Client) push(ctx context.Context, doc stateDocument) error {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(doc).
		Put("/users/" + client.userID + "/state")
	if err != nil {
		return fmt.Errorf("httpClient.Put > %w", err)
	}
	if response.IsError() {
		return fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}
	return nil
}

// Pull fetches the remote state and decodes it into a snapshot. Item payloads
// with an unknown category or broken JSON are skipped, matching the local
// repository's load behavior.
func (client *Client) Pull(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot
	if err := client.withRetry(ctx, func() error {
		decoded, err := client.pull(ctx)
		if err != nil {
			return err
		}
		snap = decoded
		return nil
	}); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

func (client *Client) pull(ctx context.Context) (store.Snapshot, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&stateDocument{}).
		Get("/users/" + client.userID + "/state")
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.IsError() {
		return store.Snapshot{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	doc := response.Result().(*stateDocument)
	if doc == nil {
		return store.Snapshot{}, fmt.Errorf("empty response body: %s", response.String())
	}
	return decodeState(*doc), nil
}

func encodeState(snap store.Snapshot) (stateDocument, error) {
	doc := stateDocument{
		Items:        make(map[string][]json.RawMessage),
		ReviewEvents: snap.ReviewEvents,
		ErrorLog:     snap.ErrorLog,
	}
	for _, category := range item.Categories() {
		for _, it := range snap.Items[category] {
			payload, err := json.Marshal(it)
			if err != nil {
				return stateDocument{}, fmt.Errorf("json.Marshal(item %s) > %w", it.Schedule().ID, err)
			}
			doc.Items[string(category)] = append(doc.Items[string(category)], payload)
		}
	}
	return doc, nil
}

func decodeState(doc stateDocument) store.Snapshot {
	snap := store.Snapshot{
		Items:        make(map[item.Category][]item.Item),
		ReviewEvents: doc.ReviewEvents,
		ErrorLog:     doc.ErrorLog,
	}
	for name, payloads := range doc.Items {
		category, err := item.ParseCategory(name)
		if err != nil {
			continue
		}
		for _, payload := range payloads {
			it, err := item.Unmarshal(category, payload)
			if err != nil {
				continue
			}
			snap.Items[category] = append(snap.Items[category], it)
		}
	}
	return snap
}
