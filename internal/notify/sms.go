package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"visitgate/internal/platform/config"
	dErrors "visitgate/pkg/domain-errors"
)

// RouteMobileClient sends SMS through the Route Mobile bulk gateway. The
// gateway answers with a pipe-separated status line; "1701" means accepted.
type RouteMobileClient struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewRouteMobileClient(cfg config.SMSConfig) *RouteMobileClient {
	return &RouteMobileClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// SendSMS delivers one message to the phone. The destination gets the
// configured country code prefixed; phone is the bare ten-digit number.
func (c *RouteMobileClient) SendSMS(ctx context.Context, phone, text string) error {
	query := url.Values{}
	query.Set("username", c.cfg.Username)
	query.Set("password", c.cfg.Password)
	query.Set("type", "0")
	query.Set("dlr", "1")
	query.Set("destination", c.cfg.CountryCode+phone)
	query.Set("source", c.cfg.Source)
	query.Set("message", text)
	query.Set("entityid", c.cfg.EntityID)
	query.Set("tempid", c.cfg.TemplateID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.GatewayURL+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "sms gateway unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "sms gateway response unreadable", err)
	}

	status, _, _ := strings.Cut(string(body), "|")
	if status != "1701" {
		return dErrors.New(dErrors.CodeUnavailable,
			"sms gateway rejected message: "+strings.TrimSpace(status))
	}
	return nil
}
