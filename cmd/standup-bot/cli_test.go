package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ykvlv/standup-bot/internal/app"
	"github.com/ykvlv/standup-bot/internal/config"
	"github.com/ykvlv/standup-bot/internal/domain"
)

func execute(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(cfg, zaptest.NewLogger(t))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, cfg config.Config) {
	t.Helper()
	ctx := context.Background()
	core, err := app.OpenCore(ctx, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open core: %v", err)
	}
	defer core.Close()
	if err := core.Registry.Add(ctx, domain.TrackedUser{ID: "1", DisplayName: "Ann"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// 16:00 UTC is 09:00 in Los Angeles on 2025-05-06.
	at := time.Date(2025, time.May, 6, 16, 0, 0, 0, time.UTC)
	if err := core.Journal.Append(ctx, domain.Message{ID: "1", AuthorID: "1", Content: "reviewed PRs", Time: at}); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestCLI_Offline(t *testing.T) {
	cfg := config.Config{DataDir: t.TempDir(), StoreDriver: "json", HistoryRetention: 0}
	seed(t, cfg)

	out, err := execute(t, cfg, "users", "list")
	if err != nil || out != "1\tAnn\n" {
		t.Fatalf("users list: %q %v", out, err)
	}

	out, err = execute(t, cfg, "recap", "daily", "--date", "2025-05-06")
	if err != nil || !strings.Contains(out, "reviewed PRs") {
		t.Fatalf("recap daily: %q %v", out, err)
	}

	out, err = execute(t, cfg, "recap", "weekly", "--date", "2025-05-07")
	if err != nil || !strings.Contains(out, "Ann: 1/7 days") {
		t.Fatalf("recap weekly: %q %v", out, err)
	}

	if _, err := execute(t, cfg, "recap", "daily", "--date", "May 6"); err == nil {
		t.Fatalf("want error for bad date")
	}
}

func TestCLI_ConfigShow(t *testing.T) {
	cfg := config.Config{DataDir: t.TempDir(), StoreDriver: "bolt"}

	out, err := execute(t, cfg, "config", "show")
	if err != nil || !strings.Contains(out, "timezone: America/Los_Angeles") || !strings.Contains(out, "09:30") {
		t.Fatalf("yaml: %q %v", out, err)
	}

	out, err = execute(t, cfg, "config", "show", "-o", "json")
	if err != nil || !strings.Contains(out, `"reminder_time": "09:30"`) {
		t.Fatalf("json: %q %v", out, err)
	}

	if _, err := execute(t, cfg, "config", "show", "-o", "toml"); err == nil {
		t.Fatalf("want error for unknown format")
	}
}

func TestCLI_DataDirFlag(t *testing.T) {
	dir := t.TempDir()
	seed(t, config.Config{DataDir: dir, StoreDriver: "sqlite"})

	out, err := execute(t, config.Config{DataDir: t.TempDir(), StoreDriver: "json"}, "--data-dir", dir, "--store", "sqlite", "users", "list")
	if err != nil || !strings.Contains(out, "Ann") {
		t.Fatalf("flags not applied: %q %v", out, err)
	}
}
