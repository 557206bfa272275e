// internal/clients/bookstore_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"bookstore/internal/catalog"
)

// APIError is returned when the bookstore answers with a non-success status.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("bookstore api: %d %s (%s)", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("bookstore api: %d %s", e.StatusCode, e.Message)
}

type BookstoreClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewBookstoreClient(baseURL string, httpClient *http.Client) *BookstoreClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BookstoreClient{baseURL: baseURL, httpClient: httpClient}
}

func (c *BookstoreClient) AddItem(ctx context.Context, req catalog.ItemRequest) (*catalog.ItemResponse, error) {
	var item catalog.ItemResponse
	if err := c.do(ctx, http.MethodPost, "/items", req, http.StatusCreated, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *BookstoreClient) ListItems(ctx context.Context) ([]catalog.ItemResponse, error) {
	var items []catalog.ItemResponse
	if err := c.do(ctx, http.MethodGet, "/items", nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *BookstoreClient) GetItem(ctx context.Context, id string) (*catalog.ItemResponse, error) {
	var item catalog.ItemResponse
	if err := c.do(ctx, http.MethodGet, "/items/"+url.PathEscape(id), nil, http.StatusOK, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *BookstoreClient) Purchase(ctx context.Context, id string, req catalog.PurchaseRequest) (*catalog.PurchaseResponse, error) {
	var receipt catalog.PurchaseResponse
	path := "/items/" + url.PathEscape(id) + "/purchase"
	if err := c.do(ctx, http.MethodPost, path, req, http.StatusOK, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// PruneOutdated removes items older than years and returns them.
func (c *BookstoreClient) PruneOutdated(ctx context.Context, years int) ([]catalog.ItemResponse, error) {
	var removed []catalog.ItemResponse
	if err := c.do(ctx, http.MethodPost, "/items/prune", catalog.PruneRequest{Years: &years}, http.StatusOK, &removed); err != nil {
		return nil, err
	}
	return removed, nil
}

// Inventory returns the server's text rendering of the catalog.
func (c *BookstoreClient) Inventory(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items/inventory", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read inventory: %w", err)
	}
	return string(text), nil
}

func (c *BookstoreClient) do(ctx context.Context, method, path string, in any, wantStatus int, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var apiErr catalog.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error, Details: apiErr.Details}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
