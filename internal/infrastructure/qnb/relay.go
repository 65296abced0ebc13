package qnb

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// RelayResult is the verbatim upstream answer of a relayed SOAP call.
type RelayResult struct {
	StatusCode  int
	ContentType string
	Body        string
}

// allowedRelayHeaders keeps the relay from becoming a header smuggling
// surface; everything else the caller sets is dropped.
var allowedRelayHeaders = map[string]bool{
	"content-type":  true,
	"soapaction":    true,
	"cookie":        true,
	"authorization": true,
}

// Relay forwards a prebuilt SOAP envelope to an arbitrary gateway URL and
// hands the body back untouched. Used by the admin panel to debug gateway
// behavior with hand-crafted envelopes; it never parses the response.
func (c *Client) Relay(ctx context.Context, url string, headers map[string]string, envelope string) (*RelayResult, error) {
	if !strings.HasPrefix(url, "https://") {
		return nil, &ValidationError{Field: "url", Reason: "must be an https endpoint"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return nil, &TransportError{Op: "relay", Err: err}
	}
	req.Header.Set("Content-Type", soapContentType)
	req.Header.Set("SOAPAction", `""`)
	for k, v := range headers {
		if allowedRelayHeaders[strings.ToLower(k)] {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "relay", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: "relay", Err: err}
	}

	return &RelayResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}
