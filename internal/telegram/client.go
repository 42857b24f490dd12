package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/retouchshop/shopapi/config"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotConfigured is returned when the bot token or the chat id is missing.
var ErrNotConfigured = errors.New("telegram credentials not configured")

// APIError is a reply from the Bot API with ok=false.
type APIError struct {
	StatusCode  int
	Description string
	Body        jsoniter.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error (status %d): %s", e.StatusCode, e.Description)
}

// Client sends messages to one channel through the Telegram Bot API.
type Client struct {
	apiBase string
	token   string
	chatId  string
}

func NewClient(cfg config.TelegramConfig) *Client {
	base := strings.TrimRight(cfg.ApiBase, "/")
	if base == "" {
		base = "https://api.telegram.org"
	}
	return &Client{
		apiBase: base,
		token:   strings.TrimSpace(cfg.BotToken),
		chatId:  strings.TrimSpace(cfg.ChatId),
	}
}

// HasToken reports whether a bot token is configured.
func (c *Client) HasToken() bool { return c.token != "" }

// HasChatId reports whether a target chat is configured.
func (c *Client) HasChatId() bool { return c.chatId != "" }

type sendPhotoReply struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendPhoto posts a photo by URL with a caption to the configured chat.
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string) error {
	if !c.HasToken() || !c.HasChatId() {
		return ErrNotConfigured
	}

	var (
		raw  []byte
		code int
	)
	err := gout.POST(fmt.Sprintf("%s/bot%s/sendPhoto", c.apiBase, c.token)).
		WithContext(ctx).
		SetJSON(gout.H{
			"chat_id": c.chatId,
			"photo":   photoURL,
			"caption": caption,
		}).
		BindBody(&raw).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "telegram sendPhoto request")
	}

	var reply sendPhotoReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return errors.Wrapf(err, "telegram sendPhoto: malformed response (status %d)", code)
	}
	if !reply.Ok {
		zap.L().Warn("telegram sendPhoto rejected",
			zap.Int("status", code),
			zap.String("description", reply.Description),
		)
		return &APIError{StatusCode: code, Description: reply.Description, Body: raw}
	}

	zap.L().Info("telegram photo sent", zap.String("chat_id", c.chatId))
	return nil
}
