package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/commands"
	"github.com/ykvlv/standup-bot/internal/domain"
)

// Sender posts a reply to the standup chat. Client implements this.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// AdminChecker reports chat admin rights. Client implements this.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// Recorder stores observed chat messages. history.Journal implements this.
type Recorder interface {
	Append(ctx context.Context, m domain.Message) error
}

// Dispatcher runs commands. commands.Dispatcher implements this.
type Dispatcher interface {
	Known(name string) bool
	Handle(ctx context.Context, inv commands.Invocation) string
}

// Router wires Telegram updates to the command dispatcher and the history journal.
type Router struct {
	chatID   int64
	log      *zap.Logger
	sender   Sender
	admins   AdminChecker
	recorder Recorder
	dispatch Dispatcher
}

// NewRouter creates a new Telegram router for the standup chat.
func NewRouter(chatID int64, log *zap.Logger, sender Sender, admins AdminChecker, recorder Recorder, dispatch Dispatcher) *Router {
	return &Router{
		chatID:   chatID,
		log:      log,
		sender:   sender,
		admins:   admins,
		recorder: recorder,
		dispatch: dispatch,
	}
}

// HandleUpdate routes a single update: commands go to the dispatcher,
// other messages in the standup chat are recorded as channel history.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.ID != r.chatID {
		r.log.Debug("ignoring message from foreign chat", zap.Int64("chatID", msg.Chat.ID))
		return
	}
	if msg.IsCommand() {
		r.handleCommand(ctx, msg)
		return
	}
	r.record(ctx, msg)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := commands.Normalize(msg.Command())
	if !r.dispatch.Known(name) {
		return
	}

	inv := commands.Invocation{Name: name, Args: msg.CommandArguments()}
	if msg.From != nil {
		inv.Caller = commands.Caller{ID: strconv.FormatInt(msg.From.ID, 10), Name: FullName(msg.From)}
		if spec, _ := commands.Lookup(name); spec.Admin {
			ok, err := r.admins.IsAdmin(ctx, msg.From.ID)
			if err != nil {
				r.log.Warn("admin check failed", zap.Int64("userID", msg.From.ID), zap.Error(err))
			}
			inv.Caller.Admin = ok
		}
	}
	if reply := msg.ReplyToMessage; reply != nil && reply.From != nil && !reply.From.IsBot && strings.TrimSpace(inv.Args) == "" {
		inv.Target = &domain.TrackedUser{ID: strconv.FormatInt(reply.From.ID, 10), DisplayName: FullName(reply.From)}
	}

	text := r.dispatch.Handle(ctx, inv)
	if text == "" {
		return
	}
	if err := r.sender.Send(ctx, text); err != nil {
		r.log.Error("send reply failed", zap.String("command", name), zap.Error(err))
	}
}

func (r *Router) record(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}
	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	m := domain.Message{
		ID:         strconv.Itoa(msg.MessageID),
		AuthorID:   strconv.FormatInt(msg.From.ID, 10),
		AuthorName: FullName(msg.From),
		Content:    content,
		Time:       msg.Time().UTC(),
	}
	if err := r.recorder.Append(ctx, m); err != nil {
		r.log.Error("record message failed", zap.String("author", m.AuthorID), zap.Error(err))
		return
	}
	r.log.Debug("recorded standup update", zap.String("author", m.AuthorName))
}
