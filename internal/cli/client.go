package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rigtycoon/internal/game"
)

// Client talks to a rigtycoon-api server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func (c *Client) Status(ctx context.Context) (game.Status, error) {
	var out game.Status
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/status", nil, &out)
	return out, err
}

func (c *Client) Fleet(ctx context.Context) ([]game.RigView, error) {
	var out struct {
		Rigs []game.RigView `json:"rigs"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/fleet", nil, &out)
	return out.Rigs, err
}

func (c *Client) Tenders(ctx context.Context) ([]game.TenderView, error) {
	var out struct {
		Tenders []game.TenderView `json:"tenders"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/tenders", nil, &out)
	return out.Tenders, err
}

func (c *Client) Finances(ctx context.Context) (game.Finances, error) {
	var out game.Finances
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/finances", nil, &out)
	return out, err
}

func (c *Client) SuggestBids(ctx context.Context) ([]game.Bid, error) {
	var out struct {
		Bids []game.Bid `json:"bids"`
	}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/bids/suggest", nil, &out)
	return out.Bids, err
}

func (c *Client) PlaceBid(ctx context.Context, tenderID, rigID, dayrateK int) (game.Result, error) {
	var out game.Result
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/bids", map[string]any{
		"tender_id": tenderID,
		"rig_id":    rigID,
		"dayrate_k": dayrateK,
	}, &out)
	return out, err
}

func (c *Client) Prepare(ctx context.Context) ([]game.Tender, error) {
	var out struct {
		Tenders []game.Tender `json:"tenders"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/turn/prepare", nil, &out)
	return out.Tenders, err
}

func (c *Client) Advance(ctx context.Context) (game.TurnReport, []game.Tender, error) {
	var out struct {
		Report  game.TurnReport `json:"report"`
		Tenders []game.Tender   `json:"tenders"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/turn/advance", nil, &out)
	return out.Report, out.Tenders, err
}

// Do sends an arbitrary request and decodes the JSON object reply.
func (c *Client) Do(ctx context.Context, method, path string, body map[string]any) (map[string]any, error) {
	var out map[string]any
	err := c.jsonRequest(ctx, method, path, body, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
