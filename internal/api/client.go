package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stevenovak55/bmnboston-sub021/internal/credentials"
)

// maxAuthRetries bounds refresh attempts per logical request, so a server
// that keeps returning 401 after a successful refresh cannot cause an
// infinite loop.
const maxAuthRetries = 2

const defaultRefreshTimeout = 30 * time.Second

// BaseURLs holds the three namespace roots requests are resolved against.
type BaseURLs struct {
	App  string
	Site string
	MLD  string
}

// Client turns Endpoint descriptors into HTTP round-trips: auth header
// injection, parameter encoding, envelope interpretation, and a
// single-flight token refresh on 401.
type Client struct {
	urls           BaseURLs
	httpClient     HTTPClient
	store          credentials.Store
	logger         zerolog.Logger
	refreshTimeout time.Duration

	// mu guards the shared refresh state below. Nothing else is shared
	// across requests.
	mu         sync.Mutex
	refreshing bool
	waiters    []refreshWaiter
}

// refreshWaiter is a caller blocked on an in-flight refresh. The channel
// is buffered so the settling goroutine never blocks on a waiter that
// already gave up.
type refreshWaiter struct {
	id   uuid.UUID
	done chan error
}

// New creates a Client over the given transport and credential store.
func New(urls BaseURLs, store credentials.Store, httpClient HTTPClient, logger zerolog.Logger) *Client {
	return &Client{
		urls:           urls,
		httpClient:     httpClient,
		store:          store,
		logger:         logger,
		refreshTimeout: defaultRefreshTimeout,
	}
}

// Do executes ep and, if out is non-nil, decodes the envelope's data field
// into it. On 401 it refreshes the access token (sharing any refresh
// already in flight) and retries, at most maxAuthRetries times.
func (c *Client) Do(ctx context.Context, ep Endpoint, out any) error {
	for attempt := 0; ; attempt++ {
		token, ok := c.store.AccessToken()
		if ep.RequiresAuth && !ok {
			if !c.store.HasRefreshToken() {
				return &Error{Kind: KindUnauthorized, Message: "no credentials available"}
			}
			if attempt >= maxAuthRetries {
				c.store.Clear()
				return &Error{Kind: KindUnauthorized, Message: "authentication retries exhausted"}
			}
			if err := c.refreshTokens(ctx); err != nil {
				return err
			}
			continue
		}

		req, err := c.buildRequest(ctx, ep, token)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &Error{Kind: KindNetwork, Message: "request failed", cause: err}
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &Error{Kind: KindNetwork, Message: "failed to read response body", cause: readErr}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return c.decodeEnvelope(ep, body, out)
		case resp.StatusCode == http.StatusUnauthorized:
			if !ep.RequiresAuth {
				return &Error{Kind: KindUnauthorized, Status: resp.StatusCode}
			}
			if attempt >= maxAuthRetries {
				c.store.Clear()
				return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "authentication retries exhausted"}
			}
			c.logger.Debug().Str("path", ep.Path).Int("attempt", attempt).Msg("got 401, refreshing access token")
			if err := c.refreshTokens(ctx); err != nil {
				return err
			}
		case resp.StatusCode == http.StatusForbidden:
			return &Error{Kind: KindForbidden, Status: resp.StatusCode}
		case resp.StatusCode == http.StatusNotFound:
			return &Error{Kind: KindNotFound, Status: resp.StatusCode}
		case resp.StatusCode == http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Status: resp.StatusCode}
		default:
			return &Error{Kind: KindHTTP, Status: resp.StatusCode}
		}
	}
}

func (c *Client) baseURL(ns Namespace) string {
	switch ns {
	case NamespaceSite:
		return c.urls.Site
	case NamespaceMLD:
		return c.urls.MLD
	default:
		return c.urls.App
	}
}

// buildRequest assembles the HTTP request for ep: parameters go into the
// query string for GET and into a form-encoded body otherwise, both using
// the bracketed flattening the server parses.
func (c *Client) buildRequest(ctx context.Context, ep Endpoint, token string) (*http.Request, error) {
	base := c.baseURL(ep.Namespace)
	if base == "" {
		return nil, &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf("no base URL configured for namespace %d", ep.Namespace)}
	}
	target := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ep.Path, "/")

	encoded := EncodeParams(ep.Parameters)
	var body io.Reader
	if ep.Method == http.MethodGet {
		if encoded != "" {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + encoded
		}
	} else if encoded != "" {
		body = strings.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Message: "failed to build request", cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeEnvelope interprets a 2xx payload. A body that fails to parse is a
// decode error, not a success: schema drift is logged with a payload
// snippet but never surfaced to callers verbatim.
func (c *Client) decodeEnvelope(ep Endpoint, body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error().Err(err).Str("path", ep.Path).Str("payload", snippet(body)).Msg("response did not match envelope shape")
		return &Error{Kind: KindDecode, Message: "unexpected response format", cause: err}
	}
	if !env.Success {
		if env.Error != nil {
			return &Error{Kind: KindServer, Status: env.Error.Status, Code: env.Error.Code, Message: env.Error.Message}
		}
		return &Error{Kind: KindServer, Message: "request rejected without error detail"}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		c.logger.Error().Err(err).Str("path", ep.Path).Str("payload", snippet(env.Data)).Msg("response data did not match expected shape")
		return &Error{Kind: KindDecode, Message: "unexpected response data", cause: err}
	}
	return nil
}

func snippet(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// refreshTokens obtains a fresh access token, collapsing concurrent
// callers onto a single refresh HTTP call. Every caller enqueues a waiter;
// the first one also starts the refresh. Waiters are settled exactly once,
// in FIFO order, by the goroutine that ran the refresh. A caller whose
// context ends while waiting is removed from the queue and gets a
// cancellation error; the refresh itself keeps running, since other
// waiters depend on it.
func (c *Client) refreshTokens(ctx context.Context) error {
	c.mu.Lock()
	w := refreshWaiter{id: uuid.New(), done: make(chan error, 1)}
	c.waiters = append(c.waiters, w)
	if !c.refreshing {
		c.refreshing = true
		go c.runRefresh(context.WithoutCancel(ctx))
	}
	c.mu.Unlock()

	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		c.removeWaiter(w.id)
		return &Error{Kind: KindNetwork, Message: "cancelled while waiting for token refresh", cause: ctx.Err()}
	}
}

func (c *Client) removeWaiter(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w.id == id {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return
		}
	}
}

// runRefresh executes the refresh call and then runs the one cleanup step
// every exit path shares: snapshot and clear the waiter queue, drop the
// refreshing flag, and settle every snapshotted waiter with the outcome.
func (c *Client) runRefresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	err := c.doRefresh(ctx)

	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, w := range waiters {
		w.done <- err
	}
}

// doRefresh performs the refresh HTTP call and persists the new token set
// before anyone is released, so every retried request observes it.
func (c *Client) doRefresh(ctx context.Context) error {
	refresh, ok := c.store.RefreshToken()
	if !ok {
		return &Error{Kind: KindUnauthorized, Message: "no refresh token available"}
	}

	ep := Endpoint{
		Path:       "/auth/refresh",
		Method:     http.MethodPost,
		Parameters: map[string]any{"refresh_token": refresh},
		Namespace:  NamespaceApp,
	}
	req, err := c.buildRequest(ctx, ep, "")
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are not irrecoverable: keep the credentials
		// and let the caller retry the whole operation.
		return &Error{Kind: KindNetwork, Message: "token refresh request failed", cause: err}
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &Error{Kind: KindNetwork, Message: "failed to read refresh response", cause: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The server rejected the refresh token; the stored record is
		// irrecoverable.
		c.store.Clear()
		c.logger.Warn().Int("status", resp.StatusCode).Msg("token refresh rejected, clearing credentials")
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: "token refresh rejected"}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || !env.Success {
		c.store.Clear()
		c.logger.Warn().Str("payload", snippet(body)).Msg("malformed refresh response, clearing credentials")
		return &Error{Kind: KindUnauthorized, Message: "malformed refresh response", cause: err}
	}
	var grant refreshGrant
	if err := json.Unmarshal(env.Data, &grant); err != nil || grant.AccessToken == "" || grant.RefreshToken == "" {
		c.store.Clear()
		c.logger.Warn().Str("payload", snippet(env.Data)).Msg("incomplete refresh grant, clearing credentials")
		return &Error{Kind: KindUnauthorized, Message: "incomplete refresh grant", cause: err}
	}

	accessTTL := DefaultAccessTTL
	if grant.ExpiresIn > 0 {
		accessTTL = time.Duration(grant.ExpiresIn) * time.Second
	}
	refreshTTL := DefaultRefreshTTL
	if grant.RefreshExpiresIn > 0 {
		refreshTTL = time.Duration(grant.RefreshExpiresIn) * time.Second
	}
	c.store.Save(grant.AccessToken, grant.RefreshToken, accessTTL, refreshTTL)
	c.logger.Info().Msg("access token refreshed")
	return nil
}
