package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailgunNotifier sends one plain-text mail per intent through the Mailgun
// messages endpoint.
type MailgunNotifier struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

func NewMailgunNotifier(baseURL, apiKey, from string) *MailgunNotifier {
	return &MailgunNotifier{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (m *MailgunNotifier) Notify(ctx context.Context, intent Intent) error {
	if intent.Email == "" {
		return fmt.Errorf("mailgun: user %s has no email address", intent.Username)
	}

	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", intent.Email)
	form.Set("subject", intent.Event.Subject())
	form.Set("text", fmt.Sprintf(
		"Hello %s,\n\n%s.\n\nYou receive this message because you watch this document.\n",
		intent.Username,
		intent.Event.Subject(),
	))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/messages",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.apiKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"mailgun send error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
