package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap/zaptest"

	"github.com/ykvlv/standup-bot/internal/commands"
	"github.com/ykvlv/standup-bot/internal/domain"
)

const chatID int64 = -1001

// --- Client ---

type fakeBot struct {
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
	members  map[int64]tgbotapi.ChatMember
	sendErr  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	m, ok := f.members[cfg.UserID]
	if !ok || cfg.ChatID != chatID {
		return tgbotapi.ChatMember{}, errors.New("Bad Request: user not found")
	}
	return m, nil
}

func TestClient_SendUsesHTMLAndSplits(t *testing.T) {
	bot := &fakeBot{}
	c := NewClient(bot, chatID, zaptest.NewLogger(t))

	if err := c.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ParseMode != tgbotapi.ModeHTML || bot.sent[0].ChatID != chatID {
		t.Fatalf("unexpected message: %+v", bot.sent)
	}

	long := strings.Repeat("line of standup text\n", 400)
	if err := c.Send(context.Background(), long); err != nil {
		t.Fatalf("send long: %v", err)
	}
	if len(bot.sent) < 3 {
		t.Fatalf("long text must be split, got %d messages", len(bot.sent))
	}
	for _, m := range bot.sent[1:] {
		if len([]rune(m.Text)) > MaxMessageLen {
			t.Fatalf("chunk too long: %d", len([]rune(m.Text)))
		}
	}
}

func TestClient_SendError(t *testing.T) {
	bot := &fakeBot{sendErr: errors.New("Forbidden: bot was kicked")}
	c := NewClient(bot, chatID, zaptest.NewLogger(t))
	if err := c.Send(context.Background(), "x"); err == nil {
		t.Fatalf("want error")
	}
}

func TestClient_MembersAndAdmins(t *testing.T) {
	bot := &fakeBot{members: map[int64]tgbotapi.ChatMember{
		1: {User: &tgbotapi.User{ID: 1, FirstName: "Ann", LastName: "Lee"}, Status: "administrator"},
		2: {User: &tgbotapi.User{ID: 2, UserName: "bob"}, Status: "member"},
		3: {User: &tgbotapi.User{ID: 3, FirstName: "Cid"}, Status: "left"},
	}}
	c := NewClient(bot, chatID, zaptest.NewLogger(t))
	ctx := context.Background()

	if name, err := c.DisplayName(ctx, "1"); err != nil || name != "Ann Lee" {
		t.Fatalf("display name: %q %v", name, err)
	}
	if name, _ := c.DisplayName(ctx, "2"); name != "bob" {
		t.Fatalf("username fallback: %q", name)
	}
	if _, err := c.DisplayName(ctx, "3"); err == nil {
		t.Fatalf("want error for a user who left the chat")
	}
	if _, err := c.DisplayName(ctx, "not-a-number"); err == nil {
		t.Fatalf("want error for non-numeric id")
	}
	if ok, _ := c.IsAdmin(ctx, 1); !ok {
		t.Fatalf("Ann is an administrator")
	}
	if ok, _ := c.IsAdmin(ctx, 2); ok {
		t.Fatalf("Bob is a plain member")
	}
}

func TestClient_SyncCommands(t *testing.T) {
	bot := &fakeBot{}
	c := NewClient(bot, chatID, zaptest.NewLogger(t))
	n, err := c.SyncCommands(context.Background(), commands.Specs)
	if err != nil || n != len(commands.Specs) {
		t.Fatalf("sync: %d %v", n, err)
	}
	cfg, ok := bot.requests[0].(tgbotapi.SetMyCommandsConfig)
	if !ok {
		t.Fatalf("unexpected request %T", bot.requests[0])
	}
	for _, cmd := range cfg.Commands {
		if strings.Contains(cmd.Command, "-") || len(cmd.Command) > 32 {
			t.Fatalf("invalid telegram command name %q", cmd.Command)
		}
	}
}

// --- Split ---

func TestSplit_ShortTextUnchanged(t *testing.T) {
	if got := Split("a\nb", 10); len(got) != 1 || got[0] != "a\nb" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestSplit_LineBoundariesAndFooter(t *testing.T) {
	got := Split("aaaa\nbbbb\ncccc", 10)
	if len(got) != 2 {
		t.Fatalf("want 2 chunks, got %q", got)
	}
	if got[0] != "aaaa\nbbbb\n\n<i>Part 1/2</i>" || got[1] != "cccc\n\n<i>Part 2/2</i>" {
		t.Fatalf("unexpected chunks %q", got)
	}
}

func TestSplit_LongLineKeepsEntities(t *testing.T) {
	got := Split("abcdefg&amp;xyz", 9)
	if len(got) != 2 || !strings.HasPrefix(got[0], "abcdefg\n") || !strings.HasPrefix(got[1], "&amp;xyz") {
		t.Fatalf("entity was split: %q", got)
	}
}

func TestSplit_LongMentionLineKeepsLinksWhole(t *testing.T) {
	mentions := make([]string, 120)
	for i := range mentions {
		mentions[i] = fmt.Sprintf(`<a href="tg://user?id=%d">User %d</a>`, 100000+i, i)
	}
	got := Split("Reminder: "+strings.Join(mentions, " "), chunkLimit)
	if len(got) < 2 {
		t.Fatalf("want several chunks, got %d", len(got))
	}
	total := 0
	for i, chunk := range got {
		body, _, _ := strings.Cut(chunk, "\n\n<i>Part ")
		if len([]rune(body)) > chunkLimit {
			t.Fatalf("chunk %d too long: %d", i, len([]rune(body)))
		}
		open, closed := strings.Count(body, "<a "), strings.Count(body, "</a>")
		if open != closed {
			t.Fatalf("chunk %d has %d links opened and %d closed", i, open, closed)
		}
		if strings.Count(body, "<") != strings.Count(body, ">") {
			t.Fatalf("chunk %d cut inside a tag: %q", i, body)
		}
		total += open
	}
	if total != len(mentions) {
		t.Fatalf("want %d mentions across chunks, got %d", len(mentions), total)
	}
}

// --- Router ---

type sink struct{ texts []string }

func (s *sink) Send(_ context.Context, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

type admins map[int64]bool

func (a admins) IsAdmin(_ context.Context, id int64) (bool, error) { return a[id], nil }

type journal struct{ msgs []domain.Message }

func (j *journal) Append(_ context.Context, m domain.Message) error {
	j.msgs = append(j.msgs, m)
	return nil
}

type spy struct{ got []commands.Invocation }

func (s *spy) Known(name string) bool {
	_, ok := commands.Lookup(commands.Normalize(name))
	return ok
}

func (s *spy) Handle(_ context.Context, inv commands.Invocation) string {
	s.got = append(s.got, inv)
	return "ok " + inv.Name
}

func newRouter(t *testing.T) (*Router, *sink, *journal, *spy) {
	t.Helper()
	out, j, d := &sink{}, &journal{}, &spy{}
	return NewRouter(chatID, zaptest.NewLogger(t), out, admins{1: true}, j, d), out, j, d
}

func command(text string, from int64) *tgbotapi.Message {
	name := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		MessageID: 10,
		From:      &tgbotapi.User{ID: from, FirstName: "User"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func TestRouter_CommandWithAdminCheck(t *testing.T) {
	r, out, _, d := newRouter(t)
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: command("/set_deadline@standup_bot 10:30", 1)})
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: command("/set_deadline 10:30", 2)})

	if len(d.got) != 2 {
		t.Fatalf("want 2 invocations, got %d", len(d.got))
	}
	if d.got[0].Name != "set-deadline" || d.got[0].Args != "10:30" || !d.got[0].Caller.Admin {
		t.Fatalf("unexpected invocation %+v", d.got[0])
	}
	if d.got[1].Caller.Admin {
		t.Fatalf("user 2 is not an admin")
	}
	if len(out.texts) != 2 || out.texts[0] != "ok set-deadline" {
		t.Fatalf("unexpected replies %q", out.texts)
	}
}

func TestRouter_ReplyTargetsUser(t *testing.T) {
	r, _, _, d := newRouter(t)
	msg := command("/add_user", 1)
	msg.ReplyToMessage = &tgbotapi.Message{From: &tgbotapi.User{ID: 42, FirstName: "Bob"}}
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
	if d.got[0].Target == nil || d.got[0].Target.ID != "42" || d.got[0].Target.DisplayName != "Bob" {
		t.Fatalf("unexpected target %+v", d.got[0].Target)
	}
}

func TestRouter_RecordsPlainMessages(t *testing.T) {
	r, out, j, d := newRouter(t)
	date := time.Date(2025, time.May, 6, 16, 0, 0, 0, time.UTC)
	upd := func(m *tgbotapi.Message) tgbotapi.Update { return tgbotapi.Update{Message: m} }

	r.HandleUpdate(context.Background(), upd(&tgbotapi.Message{
		MessageID: 7, Date: int(date.Unix()), Text: "Yesterday: tests",
		From: &tgbotapi.User{ID: 5, FirstName: "Ann"}, Chat: &tgbotapi.Chat{ID: chatID},
	}))
	r.HandleUpdate(context.Background(), upd(&tgbotapi.Message{
		MessageID: 8, Text: "beep", From: &tgbotapi.User{ID: 9, IsBot: true}, Chat: &tgbotapi.Chat{ID: chatID},
	}))
	r.HandleUpdate(context.Background(), upd(&tgbotapi.Message{
		MessageID: 9, Text: "elsewhere", From: &tgbotapi.User{ID: 5}, Chat: &tgbotapi.Chat{ID: 777},
	}))
	r.HandleUpdate(context.Background(), upd(command("/start", 5)))

	if len(j.msgs) != 1 {
		t.Fatalf("want 1 recorded message, got %+v", j.msgs)
	}
	m := j.msgs[0]
	if m.ID != "7" || m.AuthorID != "5" || m.AuthorName != "Ann" || m.Content != "Yesterday: tests" || !m.Time.Equal(date) {
		t.Fatalf("unexpected record %+v", m)
	}
	if len(d.got) != 0 || len(out.texts) != 0 {
		t.Fatalf("unknown commands must be ignored")
	}
}
