package settings

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/store"
)

// flakyStore fails writes while failPut is set.
type flakyStore struct {
	store.Store
	failPut bool
}

func (f *flakyStore) Put(ctx context.Context, key string, v any) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, v)
}

func newStore(t *testing.T) (*Store, *flakyStore) {
	t.Helper()
	kv, err := store.OpenJSONDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	fs := &flakyStore{Store: kv}
	s, err := Open(context.Background(), fs, zaptest.NewLogger(t), domain.DefaultSettings("tpl"))
	if err != nil {
		t.Fatalf("open settings: %v", err)
	}
	return s, fs
}

func persisted(t *testing.T, kv store.Store) domain.Settings {
	t.Helper()
	var got domain.Settings
	if err := kv.Get(context.Background(), DocumentKey, &got); err != nil {
		t.Fatalf("read persisted: %v", err)
	}
	return got
}

func TestOpen_WritesDefaults(t *testing.T) {
	s, kv := newStore(t)
	if got := persisted(t, kv); got != s.Current() {
		t.Fatalf("persisted %+v != current %+v", got, s.Current())
	}
	if s.Current().ReminderTime != "09:30" {
		t.Fatalf("unexpected default reminder time %q", s.Current().ReminderTime)
	}
}

func TestSetReminderTime_ValidPersists(t *testing.T) {
	s, kv := newStore(t)
	for _, in := range []string{"00:00", "7:45", "12:00", "23:59"} {
		norm, err := s.SetReminderTime(context.Background(), in)
		if err != nil {
			t.Fatalf("SetReminderTime(%q): %v", in, err)
		}
		if got := persisted(t, kv).ReminderTime; got != norm {
			t.Fatalf("want persisted %q, got %q", norm, got)
		}
	}
}

func TestSetReminderTime_InvalidLeavesConfig(t *testing.T) {
	s, kv := newStore(t)
	before := s.Current()
	for _, in := range []string{"25:99", "10:30am", "noon", ""} {
		if _, err := s.SetReminderTime(context.Background(), in); !errors.Is(err, domain.ErrInvalidClock) {
			t.Fatalf("SetReminderTime(%q): want ErrInvalidClock, got %v", in, err)
		}
	}
	if s.Current() != before {
		t.Fatalf("in-memory settings changed: %+v", s.Current())
	}
	if persisted(t, kv) != before {
		t.Fatalf("persisted settings changed")
	}
}

func TestSetTimezone_RejectsUnknownZone(t *testing.T) {
	s, _ := newStore(t)
	if _, err := s.SetTimezone(context.Background(), "Europe/Berlin"); err != nil {
		t.Fatalf("set valid tz: %v", err)
	}
	if _, err := s.SetTimezone(context.Background(), "Not/AZone"); !errors.Is(err, domain.ErrInvalidTimezone) {
		t.Fatalf("want ErrInvalidTimezone, got %v", err)
	}
	if got := s.Current().Timezone; got != "Europe/Berlin" {
		t.Fatalf("want Europe/Berlin kept, got %s", got)
	}
}

func TestUpdate_PersistFailureKeepsMemory(t *testing.T) {
	s, kv := newStore(t)
	kv.failPut = true
	_, err := s.SetDeadline(context.Background(), "12:30")
	if !errors.Is(err, domain.ErrPersist) {
		t.Fatalf("want ErrPersist, got %v", err)
	}
	if got := s.Current().DeadlineTime; got != "12:30" {
		t.Fatalf("in-memory value must stay authoritative, got %s", got)
	}
	if got := persisted(t, kv).DeadlineTime; got != "11:00" {
		t.Fatalf("file must keep last successful write, got %s", got)
	}
}

func TestOpen_InvalidDocumentFallsBack(t *testing.T) {
	kv, err := store.OpenJSONDir(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	bad := domain.DefaultSettings("tpl")
	bad.Timezone = "Mars/Olympus"
	if err := kv.Put(context.Background(), DocumentKey, bad); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := Open(context.Background(), kv, zaptest.NewLogger(t), domain.DefaultSettings("tpl"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Current().Timezone != "America/Los_Angeles" {
		t.Fatalf("want default timezone, got %s", s.Current().Timezone)
	}
}

func TestSetStandupFormat(t *testing.T) {
	s, _ := newStore(t)
	if err := s.SetStandupFormat(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidTemplate) {
		t.Fatalf("blank template: want ErrInvalidTemplate, got %v", err)
	}
	if err := s.SetStandupFormat(context.Background(), "What did you ship?"); err != nil {
		t.Fatalf("set template: %v", err)
	}
	if s.Current().StandupFormat != "What did you ship?" {
		t.Fatalf("template not applied")
	}
}
