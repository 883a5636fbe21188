// Package rest talks to the remote note service over JSON and HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deyanlaf0409/noteblocks/pkg/codec"
	"github.com/deyanlaf0409/noteblocks/pkg/core"
)

// Config holds the configuration for a Client.
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements core.Gateway against the REST API served by Server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client. A nil HTTPClient gets one with a 30s timeout.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    hc,
		logger:  logger,
	}
}

// CreateNote implements core.Gateway.
func (c *Client) CreateNote(ctx context.Context, n core.Note, accountID string) error {
	return c.do(ctx, "create_note", http.MethodPost, "/api/accounts/"+url.PathEscape(accountID)+"/notes", n, nil)
}

// UpdateNote implements core.Gateway.
func (c *Client) UpdateNote(ctx context.Context, n core.Note) error {
	return c.do(ctx, "update_note", http.MethodPut, "/api/notes/"+url.PathEscape(n.ID), n, nil)
}

// DeleteNote implements core.Gateway.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, "delete_note", http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

// CreateFolder implements core.Gateway.
func (c *Client) CreateFolder(ctx context.Context, f core.Folder, accountID string) error {
	return c.do(ctx, "create_folder", http.MethodPost, "/api/accounts/"+url.PathEscape(accountID)+"/folders", f, nil)
}

// DeleteFolder implements core.Gateway.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	return c.do(ctx, "delete_folder", http.MethodDelete, "/api/folders/"+url.PathEscape(id), nil, nil)
}

// FetchAccountData implements core.Gateway. Records that fail to decode are skipped
// and counted in AccountData.Skipped.
func (c *Client) FetchAccountData(ctx context.Context, accountID string) (core.AccountData, error) {
	var p accountPayload
	if err := c.do(ctx, "fetch_account_data", http.MethodGet, "/api/accounts/"+url.PathEscape(accountID), nil, &p); err != nil {
		return core.AccountData{}, err
	}

	notes, skippedNotes := codec.DecodeRecords(rawRecords(p.Notes), core.Note.Validate)
	folders, skippedFolders := codec.DecodeRecords(rawRecords(p.Folders), core.Folder.Validate)
	data := core.AccountData{
		Username: p.Username,
		Notes:    notes,
		Folders:  folders,
		Skipped:  skippedNotes + skippedFolders,
	}
	if data.Skipped > 0 {
		c.logger.Warn("skipped malformed account records", "account", accountID, "count", data.Skipped)
	}
	return data, nil
}

func rawRecords(raw []json.RawMessage) []codec.Record {
	out := make([]codec.Record, len(raw))
	for i, r := range raw {
		out[i] = codec.JSONRecord(r)
	}
	return out
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &core.RemoteError{Op: op, Message: "failed to encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &core.RemoteError{Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("remote request", "op", op, "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return &core.RemoteError{Op: op, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &core.RemoteError{Op: op, Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &core.RemoteError{Op: op, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return http.StatusText(resp.StatusCode)
	}
	var p errorPayload
	if json.Unmarshal(data, &p) == nil && p.Error != "" {
		return p.Error
	}
	return strings.TrimSpace(string(data))
}

var _ core.Gateway = (*Client)(nil)

// String identifies the remote in logs.
func (c *Client) String() string {
	return fmt.Sprintf("rest(%s)", c.baseURL)
}
