package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/commands"
)

// botAPI is the subset of *tgbotapi.BotAPI the client uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Client talks to the standup chat.
type Client struct {
	bot    botAPI
	chatID int64
	log    *zap.Logger
}

// NewClient creates a client bound to the standup chat.
func NewClient(bot botAPI, chatID int64, log *zap.Logger) *Client {
	return &Client{bot: bot, chatID: chatID, log: log}
}

// Send posts text as HTML, split into several messages when it is too long.
func (c *Client) Send(ctx context.Context, text string) error {
	for _, chunk := range Split(text, chunkLimit) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(c.chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := c.bot.Send(msg); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

func (c *Client) member(id string) (tgbotapi.ChatMember, error) {
	uid, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return tgbotapi.ChatMember{}, fmt.Errorf("telegram user id %q: %w", id, err)
	}
	return c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: c.chatID, UserID: uid},
	})
}

// DisplayName resolves a user id through the standup chat's member list.
func (c *Client) DisplayName(_ context.Context, id string) (string, error) {
	m, err := c.member(id)
	if err != nil {
		return "", err
	}
	if m.User == nil {
		return "", fmt.Errorf("telegram user %s: no profile", id)
	}
	if m.HasLeft() || m.WasKicked() {
		return "", fmt.Errorf("telegram user %s: not a member of the chat (%s)", id, m.Status)
	}
	return FullName(m.User), nil
}

// IsAdmin reports whether the user administers the standup chat.
func (c *Client) IsAdmin(_ context.Context, userID int64) (bool, error) {
	m, err := c.member(strconv.FormatInt(userID, 10))
	if err != nil {
		return false, err
	}
	return m.IsCreator() || m.IsAdministrator(), nil
}

// SyncCommands registers the command menu. Telegram command names cannot
// contain hyphens, so they are sent with underscores.
func (c *Client) SyncCommands(_ context.Context, specs []commands.Spec) (int, error) {
	cmds := make([]tgbotapi.BotCommand, 0, len(specs))
	for _, s := range specs {
		cmds = append(cmds, tgbotapi.BotCommand{
			Command:     CommandName(s.Name),
			Description: s.Description,
		})
	}
	if _, err := c.bot.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return 0, fmt.Errorf("telegram set commands: %w", err)
	}
	c.log.Info("commands synced", zap.Int("count", len(cmds)))
	return len(cmds), nil
}

// CommandName converts a canonical command name to Telegram spelling.
func CommandName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// FullName joins first and last name, falling back to the username.
func FullName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return name
}
