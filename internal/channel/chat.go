package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/studyhub/notifier/internal/domain"
)

const defaultChatTimeout = 10 * time.Second

type chatResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// ChatAdapter posts a formatted text message to the external bot API. One
// attempt per dispatch, bounded by the client timeout; success requires both
// HTTP 200 and ok:true in the response body.
type ChatAdapter struct {
	client   *resty.Client
	endpoint string
}

var _ Adapter = (*ChatAdapter)(nil)

func NewChatAdapter(endpoint string) (*ChatAdapter, error) {
	client := resty.New()
	client.SetTimeout(defaultChatTimeout)
	client.SetRetryCount(0)

	return NewChatAdapterWithClient(endpoint, client)
}

func NewChatAdapterWithClient(endpoint string, client *resty.Client) (*ChatAdapter, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("chat bot endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid chat bot endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultChatTimeout)
	}
	client.SetRetryCount(0)

	return &ChatAdapter{
		client:   client,
		endpoint: trimmedEndpoint,
	}, nil
}

func (a *ChatAdapter) Channel() domain.Channel { return domain.ChannelChat }

func (a *ChatAdapter) Send(ctx context.Context, user domain.User, msg Message) (*Receipt, error) {
	if a == nil || a.client == nil {
		return nil, fmt.Errorf("chat adapter is not initialized")
	}
	if !user.HasChatID() {
		return nil, ErrNoTarget
	}

	response, err := a.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":                  user.ChatID,
			"text":                     chatText(msg),
			"parse_mode":               "HTML",
			"disable_web_page_preview": "true",
		}).
		Post(a.endpoint)
	if err != nil {
		return nil, fmt.Errorf("chat bot request failed: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("chat bot returned status %d", response.StatusCode())
	}

	var decoded chatResponse
	if err := json.Unmarshal(response.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("chat bot returned malformed response: %w", err)
	}
	if !decoded.OK {
		if desc := strings.TrimSpace(decoded.Description); desc != "" {
			return nil, fmt.Errorf("chat bot rejected message: %s", desc)
		}
		return nil, fmt.Errorf("chat bot rejected message")
	}

	return &Receipt{}, nil
}

func chatText(msg Message) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(msg.Title)
	b.WriteString("</b>\n\n")
	b.WriteString(msg.Body)
	b.WriteString("\n\n")
	b.WriteString("StudyHub · ")
	b.WriteString(msg.SentAt.UTC().Format("2006-01-02 15:04"))
	return b.String()
}
