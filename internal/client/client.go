// Package client talks to the fleet REST backend.
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

	"github.com/pkg/errors"
	"github.com/ukydev/fleet-console/internal/models"
)

// ErrNotFound is returned when the backend answers 404.
var ErrNotFound = errors.New("not found")

// ErrNullEntity is returned when the backend answers with a JSON null
// where an entity was expected.
var ErrNullEntity = errors.New("null entity")

// StatusError is returned for any other non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: http %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client is a thin JSON-over-HTTP client bound to one backend base URL.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return errors.Wrap(err, "parse url")
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "%s %s", method, path)
	}
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

// Resource is the REST endpoint of one entity collection.
type Resource[E models.Entity] struct {
	c    *Client
	path string
}

// For binds the client to the collection path of res.
func For[E models.Entity](c *Client, res models.Resource) *Resource[E] {
	return &Resource[E]{c: c, path: "/" + res.Path}
}

func (r *Resource[E]) List(ctx context.Context) ([]E, error) {
	var out []E
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	for i, e := range out {
		if models.IsNil(e) {
			return nil, errors.Wrapf(ErrNullEntity, "decode %s[%d]", r.path, i)
		}
	}
	return out, nil
}

// one runs a request answered by a single entity.
func (r *Resource[E]) one(ctx context.Context, method, path string, in any) (E, error) {
	var out, zero E
	if err := r.c.do(ctx, method, path, in, &out); err != nil {
		return zero, err
	}
	if models.IsNil(out) {
		return zero, errors.Wrapf(ErrNullEntity, "decode %s %s", method, path)
	}
	return out, nil
}

func (r *Resource[E]) Get(ctx context.Context, id string) (E, error) {
	return r.one(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil)
}

func (r *Resource[E]) Create(ctx context.Context, e E) (E, error) {
	return r.one(ctx, http.MethodPost, r.path, e)
}

func (r *Resource[E]) Patch(ctx context.Context, id string, patch models.Patch) (E, error) {
	return r.one(ctx, http.MethodPatch, r.path+"/"+url.PathEscape(id), patch)
}

func (r *Resource[E]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil)
}
