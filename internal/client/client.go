// Package client talks to the svcd HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"svc/internal/errors"
	"svc/internal/graph"
	"svc/internal/journal"
	"svc/internal/repo"
	"svc/internal/service"
)

// DefaultServer is used when neither --server nor SVC_SERVER is set.
const DefaultServer = "http://127.0.0.1:7070"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// do sends body as JSON and decodes a 2xx response into out. Error
// responses are decoded into *errors.Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if text, ok := out.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*text = string(data)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var e errors.Error
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Type == "" {
		return errors.Internal("unexpected status: %s", resp.Status)
	}
	if e.Code == 0 {
		e.Code = resp.StatusCode
	}
	return &e
}

func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) AddFile(ctx context.Context, name string) (service.FileResult, error) {
	var res service.FileResult
	err := c.do(ctx, http.MethodPost, "/api/files", map[string]string{"name": name}, &res)
	return res, err
}

func (c *Client) RemoveFile(ctx context.Context, name string) (service.FileResult, error) {
	var res service.FileResult
	err := c.do(ctx, http.MethodDelete, "/api/files/"+escapePath(name), nil, &res)
	return res, err
}

func (c *Client) Status(ctx context.Context) (service.Status, error) {
	var st service.Status
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &st)
	return st, err
}

func (c *Client) Commit(ctx context.Context, message string) (service.CommitResult, error) {
	var res service.CommitResult
	err := c.do(ctx, http.MethodPost, "/api/commits", map[string]string{"message": message}, &res)
	return res, err
}

func (c *Client) GetCommit(ctx context.Context, id string) (graph.View, error) {
	var v graph.View
	err := c.do(ctx, http.MethodGet, "/api/commits/"+url.PathEscape(id), nil, &v)
	return v, err
}

func (c *Client) History(ctx context.Context, id string) ([]string, error) {
	var res struct {
		IDs []string `json:"ids"`
	}
	err := c.do(ctx, http.MethodGet, "/api/commits/"+url.PathEscape(id)+"/history", nil, &res)
	return res.IDs, err
}

// RenderCommit returns the text rendering of a commit and its diffs.
func (c *Client) RenderCommit(ctx context.Context, id string, colored bool) (string, error) {
	path := "/api/commits/" + url.PathEscape(id) + "/render"
	if colored {
		path += "?color=1"
	}
	var text string
	err := c.do(ctx, http.MethodGet, path, nil, &text)
	return text, err
}

func (c *Client) Log(ctx context.Context) ([]journal.Record, error) {
	var recs []journal.Record
	err := c.do(ctx, http.MethodGet, "/api/log", nil, &recs)
	return recs, err
}

func (c *Client) Branches(ctx context.Context) (service.BranchList, error) {
	var list service.BranchList
	err := c.do(ctx, http.MethodGet, "/api/branches", nil, &list)
	return list, err
}

func (c *Client) CreateBranch(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/branches", map[string]string{"name": name}, nil)
}

func (c *Client) Checkout(ctx context.Context, branch string) (service.Status, error) {
	var st service.Status
	err := c.do(ctx, http.MethodPost, "/api/checkout", map[string]string{"branch": branch}, &st)
	return st, err
}

func (c *Client) Reset(ctx context.Context, id string) (service.Status, error) {
	var st service.Status
	err := c.do(ctx, http.MethodPost, "/api/reset", map[string]string{"id": id}, &st)
	return st, err
}

func (c *Client) Merge(ctx context.Context, branch string, resolutions []repo.Resolution) (string, error) {
	var res struct {
		ID string `json:"id"`
	}
	body := map[string]any{"branch": branch, "resolutions": resolutions}
	err := c.do(ctx, http.MethodPost, "/api/merge", body, &res)
	return res.ID, err
}

// Graph returns the text dump of every node.
func (c *Client) Graph(ctx context.Context) (string, error) {
	var text string
	err := c.do(ctx, http.MethodGet, "/api/graph", nil, &text)
	return text, err
}
