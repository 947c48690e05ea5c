package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/classpad/answerboard/pkg/metrics"
)

// Config captures connection parameters for the spreadsheet values API.
type Config struct {
	BaseURL       string
	SpreadsheetID string
	Token         string
	Timeout       time.Duration
}

const defaultClientTimeout = 10 * time.Second

// Client talks to a spreadsheet-style values API over HTTP. The remote store
// is rate-limited and latency-bearing; the client fails fast on errors rather
// than retrying, so a slow dependency degrades one request instead of
// exhausting the execution budget.
type Client struct {
	baseURL       string
	spreadsheetID string
	token         string
	http          *http.Client
}

type valuesPayload struct {
	Values [][]string `json:"values"`
}

// NewClient validates the configuration and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("sheets: base url is required")
	}
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	return &Client{
		baseURL:       base,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		token:         strings.TrimSpace(cfg.Token),
		http:          &http.Client{Timeout: timeout},
	}, nil
}

// ReadRows fetches all rows of a sheet, header row first.
func (c *Client) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	body, err := c.roundTrip(ctx, http.MethodGet, c.valuesURL(sheet), nil)
	if err != nil {
		metrics.SheetCalls.WithLabelValues("read", "error").Inc()
		return nil, err
	}
	metrics.SheetCalls.WithLabelValues("read", "ok").Inc()

	var payload valuesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("sheets: decode values: %w", err)
	}
	return payload.Values, nil
}

// AppendRow appends a single row after the last data row of a sheet.
func (c *Client) AppendRow(ctx context.Context, sheet string, row []string) error {
	_, err := c.roundTrip(ctx, http.MethodPost, c.valuesURL(sheet)+":append", valuesPayload{Values: [][]string{row}})
	if err != nil {
		metrics.SheetCalls.WithLabelValues("append", "error").Inc()
		return err
	}
	metrics.SheetCalls.WithLabelValues("append", "ok").Inc()
	return nil
}

// UpdateRow replaces the data row at the 1-based index (header row excluded).
func (c *Client) UpdateRow(ctx context.Context, sheet string, index int, row []string) error {
	if index < 1 {
		return fmt.Errorf("sheets: invalid row index %d", index)
	}

	target := fmt.Sprintf("%s/%d", c.valuesURL(sheet), index)
	_, err := c.roundTrip(ctx, http.MethodPut, target, valuesPayload{Values: [][]string{row}})
	if err != nil {
		metrics.SheetCalls.WithLabelValues("update", "error").Inc()
		return err
	}
	metrics.SheetCalls.WithLabelValues("update", "ok").Inc()
	return nil
}

func (c *Client) valuesURL(sheet string) string {
	return fmt.Sprintf("%s/v1/spreadsheets/%s/values/%s",
		c.baseURL,
		url.PathEscape(c.spreadsheetID),
		url.PathEscape(sheet),
	)
}

func (c *Client) roundTrip(ctx context.Context, method, target string, payload any) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("sheets: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("sheets: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("sheets: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sheets: %s %s: status %d", method, target, resp.StatusCode)
	}
	return data, nil
}
