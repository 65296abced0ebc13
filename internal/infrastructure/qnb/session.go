package qnb

import (
	"context"
	"strings"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
)

// Login performs the wsLogin handshake against the selected sub-service and
// returns the session token for the follow-up call. The gateway hands the
// session back as a cookie on the connector and as the <return> value on the
// e-archive portal; both shapes are accepted for either service.
func (c *Client) Login(ctx context.Context, cfg Config, service einvoice.ServiceType) (SessionToken, error) {
	envelope := LoginEnvelope(cfg.VKN, cfg.Password)
	username := cfg.VKN
	if service == einvoice.ServiceEArsiv {
		username = cfg.EarsivUsername
		envelope = LoginEarsivEnvelope(username, cfg.Password)
	}

	resp, err := c.post(ctx, "wsLogin", cfg.endpoint(service), envelope, nil)
	if err != nil {
		return "", err
	}

	if reason, ok := extractFault(resp.body); ok {
		c.log.Warn().Str("service", string(service)).Str("user", username).Str("reason", reason).Msg("qnb login rejected")
		return "", &AuthError{Service: service, Reason: reason}
	}

	if token := sessionFromCookies(resp.cookies); token != "" {
		return SessionToken(token), nil
	}

	// No cookie: some portal revisions return the raw session id in the
	// response body instead.
	ret, err := parseReturnValue(resp.body)
	if err == nil && len(ret) > 10 {
		return SessionToken("JSESSIONID=" + ret), nil
	}

	return "", &AuthError{Service: service, Reason: "login response carried no session"}
}

// sessionFromCookies keeps only the name=value pair of the first Set-Cookie
// header; path and expiry attributes never travel back.
func sessionFromCookies(setCookies []string) string {
	for _, raw := range setCookies {
		pair, _, _ := strings.Cut(raw, ";")
		pair = strings.TrimSpace(pair)
		if pair != "" {
			return pair
		}
	}
	return ""
}
