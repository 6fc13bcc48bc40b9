// Package rest is the client of aquafarmd used by the field agent.
package rest

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/readings"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/agent"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

const (
	HeaderTenantId       = "X-Tenant-Id"
	HeaderIdempotencyKey = "Idempotency-Key"
)

type Client struct {
	httpclient *http.Client
	api        string
	tenant     tenant.Id
	token      string
}

// NewClient creates a client for a profile.
//
// # Returns
//
// - *Client
//
// - error: If given profile is invalid, agent.ErrProfileInvalid is returned.
func NewClient(prof *agent.Profile) (*Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	pool, err := prof.CertPool()
	if err != nil {
		return nil, err
	}
	if pool != nil {
		tran := http.DefaultTransport.(*http.Transport).Clone()
		tran.TLSClientConfig = &tls.Config{RootCAs: pool}
		httpclient.Transport = tran
	}

	return New(prof.ApiRoot, prof.Tenant(), prof.Token, httpclient), nil
}

// New creates a client with an http.Client. A nil httpclient means http.DefaultClient.
func New(apiRoot string, t tenant.Id, token string, httpclient *http.Client) *Client {
	if httpclient == nil {
		httpclient = http.DefaultClient
	}
	return &Client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(apiRoot, "/"),
		tenant:     t,
		token:      token,
	}
}

// build URL with path
func (c *Client) apipath(path ...string) string {
	elems := []string{c.api}
	for _, p := range path {
		elems = append(elems, strings.Trim(p, "/"))
	}
	return strings.Join(elems, "/")
}

func (c *Client) newRequest(ctx context.Context, method string, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderTenantId, c.tenant.String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Healthz checks that the backend is reachable and serving.
func (c *Client) Healthz(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apipath("healthz"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return unmarshalResponseDiscardingPayload(resp)
}

// PostReading records a water-quality reading.
//
// # Args
//
// - spec: the reading.
//
// - idempotencyKey: sent as Idempotency-Key. Empty means no key.
//
// # Returns
//
// - readings.Detail: the reading recorded
//
// - bool: true when the backend created it, false when it was a replay
//
// - error: *StatusError for non-2xx response, or transport errors.
func (c *Client) PostReading(ctx context.Context, spec readings.Spec, idempotencyKey string) (readings.Detail, bool, error) {
	req, err := c.readingRequest(ctx, spec, idempotencyKey)
	if err != nil {
		return readings.Detail{}, false, err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return readings.Detail{}, false, err
	}
	defer resp.Body.Close()

	var detail readings.Detail
	if err := unmarshalJsonResponse(resp, &detail); err != nil {
		return readings.Detail{}, false, err
	}
	return detail, resp.StatusCode == http.StatusCreated, nil
}

func (c *Client) readingRequest(ctx context.Context, spec readings.Spec, idempotencyKey string) (*http.Request, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.apipath("mobile", "water-quality", "readings"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}
	return req, nil
}

// Send delivers a queued item to the backend.
//
// Any 2xx response is a success, whatever its body is.
func (c *Client) Send(ctx context.Context, item queue.Item) error {
	var req *http.Request
	var err error
	switch p := item.Payload.(type) {
	case queue.WaterReading:
		at := p.RecordedAt
		req, err = c.readingRequest(ctx, readings.Spec{
			PondId:          p.PondId,
			ClientId:        &p.ClientId,
			Temperature:     p.Temperature,
			PH:              p.PH,
			DissolvedOxygen: p.DissolvedOxygen,
			RecordedAt:      &at,
		}, p.Key())
	default:
		return fmt.Errorf("item #%d: %w: %T", item.Seq, queue.ErrUnknownType, item.Payload)
	}
	if err != nil {
		return err
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return unmarshalResponseDiscardingPayload(resp)
}

// unmarshal http response which has json content.
//
// It returns *StatusError when the status code is out of 2xx.
func unmarshalJsonResponse[T any](resp *http.Response, v *T) error {
	if err := statusError(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("unexpected response: %w (status code = %d)", err, resp.StatusCode)
	}
	return nil
}

func unmarshalResponseDiscardingPayload(resp *http.Response) error {
	err := statusError(resp)
	io.Copy(io.Discard, resp.Body)
	return err
}

func statusError(resp *http.Response) error {
	scr := StatusCodeRangeOf(resp)
	if scr == Status2xx {
		return nil
	}
	se := &StatusError{Code: resp.StatusCode, Range: scr}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return se
	}
	var eresp apierr.ErrorResponse
	if err := json.Unmarshal(body, &eresp); err == nil {
		se.Reason = eresp.Message.Reason
		se.Advice = eresp.Message.Advice
	} else {
		se.Reason = strings.TrimSpace(string(body))
	}
	return se
}
