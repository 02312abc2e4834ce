// Package remote talks to the remote store: one endpoint that serves the
// full snapshot on GET and applies action-tagged POST bodies.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"gymdesk/pkg/client"
	"gymdesk/pkg/logger"
	"gymdesk/pkg/middleware"
	"gymdesk/pkg/model"
)

type Options struct {
	Endpoint      string
	LoginTimeout  time.Duration
	DataTimeout   time.Duration
	ActionTimeout time.Duration
}

type Client struct {
	http *client.HttpClient
	opts Options
	log  *logger.Logger
}

func NewClient(opts Options, log *logger.Logger) *Client {
	return &Client{
		http: client.NewHttpClient(opts.Endpoint),
		opts: opts,
		log:  log.Component("remote"),
	}
}

// FetchSnapshot performs the bare fetch of the full state.
func (c *Client) FetchSnapshot(ctx context.Context) (*model.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.DataTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.http.GET(ctx, "")
	requestDuration.WithLabelValues(operationFetch).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.fail(ctx, operationFetch, err)
	}
	if !resp.OK() {
		requestsTotal.WithLabelValues(operationFetch, resultError).Inc()
		return nil, fmt.Errorf("%w: fetch returned %s", ErrUnavailable, client.GetErrorMessage(resp))
	}

	var snap model.Snapshot
	if err := resp.DecodeJSON(&snap); err != nil {
		requestsTotal.WithLabelValues(operationFetch, resultError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	snap.Normalize()

	requestsTotal.WithLabelValues(operationFetch, resultSuccess).Inc()
	return &snap, nil
}

// WaitReady polls the store's /ready endpoint, a sibling of the action
// endpoint, until it answers 200 or maxWait passes.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	u, err := url.Parse(c.opts.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid remote endpoint %q: %w", c.opts.Endpoint, err)
	}
	u.Path = path.Join(path.Dir(u.Path), "ready")
	u.RawQuery = ""

	if err := c.http.WaitForHealthy(ctx, u.String(), maxWait); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Send persists one action and reports whether the store acknowledged it.
func (c *Client) Send(ctx context.Context, action model.Action) error {
	var ack model.Ack
	return c.Call(ctx, action, &ack)
}

// Login uses the shorter login deadline.
func (c *Client) Login(ctx context.Context, id, password string) (*model.LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.LoginTimeout)
	defer cancel()

	var result model.LoginResult
	action := model.NewAction(model.ActionLogin, model.LoginPayload{ID: id, Password: password})
	if err := c.call(ctx, action, &result, &result.Success, &result.Message); err != nil {
		return &result, err
	}
	return &result, nil
}

// Call sends action and decodes the store's reply into out, which must
// embed or be a model.Ack.
func (c *Client) Call(ctx context.Context, action model.Action, out *model.Ack) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ActionTimeout)
	defer cancel()
	return c.call(ctx, action, out, &out.Success, &out.Message)
}

func (c *Client) call(ctx context.Context, action model.Action, out any, success *bool, message *string) error {
	name := string(action.Name)

	body, err := EncodeAction(action)
	if err != nil {
		requestsTotal.WithLabelValues(name, resultError).Inc()
		return err
	}

	start := time.Now()
	resp, err := c.http.POSTWithHeaders(ctx, "", json.RawMessage(body), requestHeaders(ctx))
	requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		return c.fail(ctx, name, err)
	}

	if err := resp.DecodeJSON(out); err != nil {
		requestsTotal.WithLabelValues(name, resultError).Inc()
		if !resp.OK() {
			return fmt.Errorf("%w: %s returned %s", ErrUnavailable, name, client.GetErrorMessage(resp))
		}
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if !resp.OK() || !*success {
		requestsTotal.WithLabelValues(name, resultRejected).Inc()
		msg := *message
		if msg == "" {
			msg = client.GetErrorMessage(resp)
		}
		return fmt.Errorf("%w: %s: %s", ErrRejected, name, msg)
	}

	requestsTotal.WithLabelValues(name, resultSuccess).Inc()
	c.log.Debug("Remote action acknowledged", "action", name, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) fail(ctx context.Context, name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		requestsTotal.WithLabelValues(name, resultTimeout).Inc()
		return fmt.Errorf("%w: %s: %v", ErrTimeout, name, err)
	}
	requestsTotal.WithLabelValues(name, resultError).Inc()
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
}

// requestHeaders forwards the originating request id so the store can
// correlate its log lines and events with ours.
func requestHeaders(ctx context.Context) map[string]string {
	id := middleware.RequestID(ctx)
	if id == "" {
		return nil
	}
	return map[string]string{middleware.RequestIDHeader: id}
}

// EncodeAction flattens the payload's fields next to the "action" key, the
// body shape the store expects.
func EncodeAction(action model.Action) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if action.Payload != nil {
		raw, err := json.Marshal(action.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", action.Name, err)
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s payload must be a JSON object: %w", action.Name, err)
		}
	}
	name, err := json.Marshal(action.Name)
	if err != nil {
		return nil, err
	}
	fields["action"] = name
	return json.Marshal(fields)
}
