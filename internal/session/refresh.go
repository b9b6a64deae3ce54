package session

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"food_store/internal/models"
)

type refreshResult struct {
	token string
	err   error
}

// refreshAccess returns an access token to replay a request that got a 401 while
// carrying staleToken. At most one refresh call is in flight; callers arriving while
// it runs wait for its result in arrival order.
func (c *Client) refreshAccess(ctx context.Context, staleToken string) (string, error) {
	c.mu.Lock()

	if c.refreshing {
		ch := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		c.metrics.observeWaiter()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if c.creds.RefreshToken == "" {
		changed := !c.creds.Empty()
		c.creds = models.Credentials{}
		c.mu.Unlock()
		if changed {
			c.notify()
		}
		return "", errNoRefreshToken
	}

	// Another request already refreshed after this one was sent.
	if c.creds.AccessToken != "" && c.creds.AccessToken != staleToken {
		token := c.creds.AccessToken
		c.mu.Unlock()
		return token, nil
	}

	c.refreshing = true
	refreshToken := c.creds.RefreshToken
	generation := c.generation
	c.mu.Unlock()

	settled := false
	defer func() {
		if !settled {
			c.settle(generation, refreshResult{err: ErrRefreshAborted})
		}
	}()

	// The refresh outlives the caller that started it; the waiters depend on it.
	token, err := c.callRefresh(context.WithoutCancel(ctx), refreshToken)
	settled = true
	c.settle(generation, refreshResult{token: token, err: err})
	return token, err
}

// settle stores the refresh outcome, clears the in-flight flag and resolves every waiter.
func (c *Client) settle(generation uint64, res refreshResult) {
	c.metrics.observeRefresh(res.err)

	c.mu.Lock()
	changed := false
	if c.generation == generation {
		if res.err != nil {
			c.creds = models.Credentials{}
		} else {
			c.creds.AccessToken = res.token
		}
		changed = true
	}
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	if res.err != nil {
		c.log.Warn("token refresh failed, credentials cleared",
			zap.Int("waiters", len(waiters)), zap.Error(res.err))
	} else {
		c.log.Info("access token refreshed", zap.Int("waiters", len(waiters)))
	}

	if changed {
		c.notify()
	}
	for _, ch := range waiters {
		ch <- res
	}
}

// callRefresh exchanges the refresh token for a new access token. It bypasses
// bearer attachment and refresh handling so it can never recurse.
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (string, error) {
	req := &request{
		method: http.MethodPost,
		path:   RefreshPath,
		header: make(http.Header),
		class:  Public,
	}
	body, err := jsonBody(models.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}
	req.body = body

	resp, err := c.send(ctx, req, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newHTTPError(resp)
	}

	var out models.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", ErrEmptyAccessToken
	}
	return out.Access, nil
}
