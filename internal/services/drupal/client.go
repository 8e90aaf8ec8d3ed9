package drupal

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"bagger/internal/config"
	"bagger/internal/services"
)

const stageName = "drupal"

// HTTPDoer describes the HTTP client used by the Drupal client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues the read-only requests bag plugins make against a Drupal
// site. Every request carries the bearer token when one is set.
type Client struct {
	baseURL      string
	token        string
	strictStatus bool
	client       HTTPDoer
}

// NewClient returns a client configured from media settings: the timeout
// bounds both connection setup and the whole exchange, and TLS verification
// follows VerifyCA.
func NewClient(settings config.MediaSettings, token string) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: settings.HTTPTimeout}).DialContext
	transport.TLSHandshakeTimeout = settings.HTTPTimeout
	if !settings.VerifyCA {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // operator opted out via drupal.verify_ca
	}
	c := NewClientWithDoer(settings.DrupalBaseURL, token, &http.Client{
		Timeout:   settings.HTTPTimeout,
		Transport: transport,
	})
	c.strictStatus = settings.StrictStatus
	return c
}

// NewClientWithDoer constructs a client around an arbitrary HTTP doer.
func NewClientWithDoer(baseURL, token string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		client:  doer,
	}
}

// BaseURL returns the normalized site URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MediaList fetches the media attached to a node. The body must be a JSON
// array; null, objects and scalars are rejected.
func (c *Client) MediaList(ctx context.Context, nodeID string) ([]MediaRecord, error) {
	target := c.baseURL + "/node/" + url.PathEscape(nodeID) + "/media"
	var raw json.RawMessage
	if err := c.getJSON(ctx, target, &raw); err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, services.Wrap(services.ErrMalformedResponse, stageName, "decode media list", target+" did not return a JSON array", nil)
	}
	records := []MediaRecord{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, services.Wrap(services.ErrMalformedResponse, stageName, "decode media list", target, err)
	}
	return records, nil
}

// Node fetches a node's JSON representation.
func (c *Client) Node(ctx context.Context, nodeID string) (Node, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, c.baseURL+"/node/"+url.PathEscape(nodeID), &raw); err != nil {
		return Node{}, err
	}
	var node Node
	if err := json.Unmarshal(raw, &node); err != nil {
		return Node{}, services.Wrap(services.ErrMalformedResponse, stageName, "decode node", nodeID, err)
	}
	node.Raw = raw
	return node, nil
}

// ResolveFileURL looks up a file entity and returns the absolute URL of its
// content, built from the site base URL and the entity's uri[0].url.
func (c *Client) ResolveFileURL(ctx context.Context, fileID EntityID) (string, error) {
	var entity FileEntity
	if err := c.getJSON(ctx, c.baseURL+"/entity/file/"+url.PathEscape(fileID.String()), &entity); err != nil {
		return "", err
	}
	if len(entity.URI) == 0 || entity.URI[0].URL == "" {
		return "", services.Wrap(services.ErrMalformedResponse, stageName, "resolve file", "file entity "+fileID.String()+" has no uri[0].url", nil)
	}
	return c.baseURL + entity.URI[0].URL, nil
}

// TermExternalURI fetches a taxonomy term by its site-relative URL and returns
// field_external_uri[0].uri.
func (c *Client) TermExternalURI(ctx context.Context, termURL string) (string, error) {
	var term Term
	if err := c.getJSON(ctx, c.baseURL+termURL, &term); err != nil {
		return "", err
	}
	if len(term.ExternalURI) == 0 {
		return "", services.Wrap(services.ErrMalformedResponse, stageName, "resolve term", "term "+termURL+" has no field_external_uri", nil)
	}
	return term.ExternalURI[0].URI, nil
}

// Download streams the body at fileURL into dst and returns the bytes copied.
// The response body is released on every path.
func (c *Client) Download(ctx context.Context, fileURL string, dst io.Writer) (int64, error) {
	resp, err := c.get(ctx, fileURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, fileURL); err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return n, services.Wrap(services.ErrTransport, stageName, "download", fileURL, err)
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, "build url", target, err)
	}
	query := parsed.Query()
	query.Set("_format", "json")
	parsed.RawQuery = query.Encode()

	resp, err := c.get(ctx, parsed.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, target); err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransport, stageName, "read body", target, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return services.Wrap(services.ErrMalformedResponse, stageName, "decode json", fmt.Sprintf("%s (status %d)", target, resp.StatusCode), err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "build request", target, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, stageName, "GET", target, err)
	}
	return resp, nil
}

// checkStatus only rejects responses in strict mode; otherwise bodies are
// decoded whatever the status code.
func (c *Client) checkStatus(resp *http.Response, target string) error {
	if !c.strictStatus {
		return nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrTransport, stageName, "GET", fmt.Sprintf("%s returned %d", target, resp.StatusCode), nil)
	}
	return nil
}

// SetStrictStatus toggles rejection of non-2xx responses.
func (c *Client) SetStrictStatus(strict bool) {
	c.strictStatus = strict
}
