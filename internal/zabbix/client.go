// Package zabbix implements a minimal JSON-RPC 2.0 client for the Zabbix
// API, covering just what the history loader needs: authentication and
// history.get over a time range.
package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shubhamdasnadas/assetwatch/internal/metrics"
	"github.com/shubhamdasnadas/assetwatch/pkg/models"
)

const (
	rpcPath        = "/api_jsonrpc.php"
	defaultTimeout = 30 * time.Second

	// historyFloat selects the numeric-float history table. The charts only
	// plot numeric series.
	historyFloat = 0
)

// ClientOptions holds connection settings for the Zabbix API endpoint.
type ClientOptions struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Client talks to one Zabbix server. The auth token is cached and refreshed
// transparently when the server reports it expired.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

// NewClient validates the options and returns a ready client. No network
// traffic happens until the first fetch.
func NewClient(opts ClientOptions, logger *slog.Logger) (*Client, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("zabbix URL is required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(opts.URL, "/"),
		username:   opts.Username,
		password:   opts.Password,
		logger:     logger.With("component", "zabbix"),
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	Auth    string `json:"auth,omitempty"`
	ID      int    `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("zabbix api error %d: %s (%s)", e.Code, e.Message, e.Data)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type historyRow struct {
	ItemID string `json:"itemid"`
	Clock  string `json:"clock"`
	Value  string `json:"value"`
}

type historyParams struct {
	Output    string   `json:"output"`
	History   int      `json:"history"`
	ItemIDs   []string `json:"itemids"`
	TimeFrom  int64    `json:"time_from"`
	TimeTill  int64    `json:"time_till"`
	SortField string   `json:"sortfield"`
	SortOrder string   `json:"sortorder"`
}

// FetchRange implements history.Source: all points with clock in [from, till],
// ascending. An empty result is not an error.
func (c *Client) FetchRange(ctx context.Context, itemID string, from, till int64) ([]models.HistoryPoint, error) {
	metrics.IncHistoryFetch()

	rows, err := c.fetchHistory(ctx, itemID, from, till)
	if err != nil {
		metrics.IncHistoryFetchError()
		return nil, err
	}

	points := make([]models.HistoryPoint, 0, len(rows))
	for _, row := range rows {
		clock, err := strconv.ParseInt(row.Clock, 10, 64)
		if err != nil {
			c.logger.Warn("skipping history row with bad clock", "clock", row.Clock)
			continue
		}
		value, err := strconv.ParseFloat(row.Value, 64)
		if err != nil {
			c.logger.Warn("skipping history row with bad value", "value", row.Value)
			continue
		}
		points = append(points, models.HistoryPoint{Clock: clock, Value: value})
	}

	// The API is asked for ascending order but older Zabbix releases ignore
	// sortorder on history tables.
	sort.Slice(points, func(i, j int) bool { return points[i].Clock < points[j].Clock })
	return points, nil
}

func (c *Client) fetchHistory(ctx context.Context, itemID string, from, till int64) ([]historyRow, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	params := historyParams{
		Output:    "extend",
		History:   historyFloat,
		ItemIDs:   []string{itemID},
		TimeFrom:  from,
		TimeTill:  till,
		SortField: "clock",
		SortOrder: "ASC",
	}

	raw, err := c.call(ctx, "history.get", params, token)
	if isAuthError(err) {
		// Token expired server-side; log in again and retry once.
		c.invalidateToken(token)
		token, err = c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		raw, err = c.call(ctx, "history.get", params, token)
	}
	if err != nil {
		return nil, err
	}

	var rows []historyRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parsing history.get result: %w", err)
	}
	return rows, nil
}

// ensureToken returns the cached auth token, logging in when absent.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	params := map[string]string{
		"username": c.username,
		"password": c.password,
	}
	raw, err := c.call(ctx, "user.login", params, "")
	if err != nil {
		return "", fmt.Errorf("zabbix login failed: %w", err)
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("parsing login result: %w", err)
	}
	c.token = token
	c.logger.Debug("authenticated with zabbix")
	return token, nil
}

func (c *Client) invalidateToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == stale {
		c.token = ""
	}
}

func (c *Client) call(ctx context.Context, method string, params any, token string) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		Auth:    token,
		ID:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rpcPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%s failed with status %d: %s", method, resp.StatusCode, string(payload))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	rpcErr, ok := err.(*rpcError)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(rpcErr.Data), "not authorised") ||
		strings.Contains(strings.ToLower(rpcErr.Data), "not authorized") ||
		strings.Contains(strings.ToLower(rpcErr.Data), "session terminated")
}
