// Package history records standup channel messages so they can be scanned by
// date later. Telegram bots receive messages as updates but cannot page
// through chat history, so the journal is the bot's view of the channel.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/standup-bot/internal/domain"
	"github.com/ykvlv/standup-bot/internal/store"
)

const keyPrefix = "history/"

// Journal stores messages in one document per UTC day.
type Journal struct {
	kv        store.Store
	log       *zap.Logger
	retention time.Duration

	mu      sync.Mutex
	lastDay string
}

// New creates a journal. Day documents older than retention are pruned when
// the first message of a new day is written; zero retention keeps everything.
func New(kv store.Store, log *zap.Logger, retention time.Duration) *Journal {
	return &Journal{kv: kv, log: log, retention: retention}
}

func dayKey(t time.Time) string {
	return keyPrefix + t.UTC().Format(domain.DateLayout)
}

func (j *Journal) load(ctx context.Context, key string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := j.kv.Get(ctx, key, &msgs)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return msgs, err
}

// Append records m. A message whose id is already stored for that day is ignored.
func (j *Journal) Append(ctx context.Context, m domain.Message) error {
	m.Time = m.Time.UTC()
	key := dayKey(m.Time)

	j.mu.Lock()
	defer j.mu.Unlock()

	msgs, err := j.load(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	for _, existing := range msgs {
		if m.ID != "" && existing.ID == m.ID {
			return nil
		}
	}
	msgs = append(msgs, m)
	if err := j.kv.Put(ctx, key, msgs); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if key != j.lastDay {
		j.lastDay = key
		if j.retention > 0 {
			if n, err := j.prune(ctx, m.Time.Add(-j.retention)); err != nil {
				j.log.Warn("prune history failed", zap.Error(err))
			} else if n > 0 {
				j.log.Info("pruned history", zap.Int("days", n))
			}
		}
	}
	return nil
}

// History returns messages with from <= time < to, oldest first.
func (j *Journal) History(ctx context.Context, from, to time.Time) ([]domain.Message, error) {
	if !to.After(from) {
		return nil, nil
	}
	first := from.UTC().Truncate(24 * time.Hour)
	last := to.Add(-time.Nanosecond).UTC()

	var out []domain.Message
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		msgs, err := j.load(ctx, dayKey(day))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", dayKey(day), err)
		}
		for _, m := range msgs {
			if !m.Time.Before(from) && m.Time.Before(to) {
				out = append(out, m)
			}
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Time.Before(out[b].Time) })
	return out, nil
}

// Prune deletes day documents that end before cutoff and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.prune(ctx, cutoff)
}

func (j *Journal) prune(ctx context.Context, cutoff time.Time) (int, error) {
	keys, err := j.kv.Keys(ctx, keyPrefix)
	if err != nil {
		return 0, err
	}
	limit := dayKey(cutoff)
	n := 0
	for _, k := range keys {
		// Day keys sort chronologically; the cutoff's own day is kept.
		if strings.Compare(k, limit) >= 0 {
			continue
		}
		if err := j.kv.Delete(ctx, k); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
