package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/go-affiliate-shop.git/internal/config"
)

// Sender is the outbound notification sink. Failures are observability-only;
// no caller lets them surface past a log line.
type Sender interface {
	Send(ctx context.Context, body string) error
}

// WhatsAppClient posts messages through a Twilio-style REST gateway.
type WhatsAppClient struct {
	HTTP *http.Client
	Cfg  config.WhatsAppConfig
}

func NewWhatsAppClient(cfg config.WhatsAppConfig) *WhatsAppClient {
	return &WhatsAppClient{
		HTTP: &http.Client{Timeout: 10 * time.Second},
		Cfg:  cfg,
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, body string) error {
	form := url.Values{}
	form.Set("From", c.Cfg.From)
	form.Set("To", c.Cfg.To)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.Cfg.BaseURL, c.Cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.Cfg.AccountSID, c.Cfg.AuthToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("whatsapp gateway returned %d", resp.StatusCode)
	}
	return nil
}
