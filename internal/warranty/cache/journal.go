package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"warranty/internal/warranty/models"
	"warranty/pkg/platform/sentinel"
)

const (
	journalKeyPrefix = "warranty:journal:"
	journalIndexKey  = "warranty:journal"
)

// Error Contract:
// - Record returns ErrConflict when the serial already has a pending entry
// - Get and Remove return ErrNotFound when it has none

// MemoryJournal keeps pending reconciliation entries in process memory.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries map[string]models.JournalEntry
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{entries: make(map[string]models.JournalEntry)}
}

func (j *MemoryJournal) Record(_ context.Context, entry models.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	serial := entry.Warranty.SerialNumber
	if _, ok := j.entries[serial]; ok {
		return fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrConflict)
	}
	j.entries[serial] = entry
	return nil
}

func (j *MemoryJournal) Get(_ context.Context, serial string) (*models.JournalEntry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	entry, ok := j.entries[serial]
	if !ok {
		return nil, fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrNotFound)
	}
	return &entry, nil
}

func (j *MemoryJournal) Remove(_ context.Context, serial string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.entries[serial]; !ok {
		return fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrNotFound)
	}
	delete(j.entries, serial)
	return nil
}

// List returns pending entries, oldest first.
func (j *MemoryJournal) List(_ context.Context) ([]models.JournalEntry, error) {
	j.mu.RLock()
	out := make([]models.JournalEntry, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e)
	}
	j.mu.RUnlock()
	sortEntries(out)
	return out, nil
}

// RedisJournal keeps pending entries durable across restarts. Entries never
// expire; they leave the journal only through reconciliation.
type RedisJournal struct {
	client redis.Cmdable
}

func NewRedisJournal(client redis.Cmdable) *RedisJournal {
	return &RedisJournal{client: client}
}

func (j *RedisJournal) Record(ctx context.Context, entry models.JournalEntry) error {
	serial := entry.Warranty.SerialNumber
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	created, err := j.client.SetNX(ctx, journalKeyPrefix+serial, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	if !created {
		return fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrConflict)
	}
	if err := j.client.SAdd(ctx, journalIndexKey, serial).Err(); err != nil {
		return fmt.Errorf("index journal entry: %w", err)
	}
	return nil
}

func (j *RedisJournal) Get(ctx context.Context, serial string) (*models.JournalEntry, error) {
	raw, err := j.client.Get(ctx, journalKeyPrefix+serial).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	var entry models.JournalEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode journal entry: %w", err)
	}
	return &entry, nil
}

func (j *RedisJournal) Remove(ctx context.Context, serial string) error {
	var del *redis.IntCmd
	_, err := j.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, journalKeyPrefix+serial)
		pipe.SRem(ctx, journalIndexKey, serial)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove journal entry: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("journal entry %q: %w", serial, sentinel.ErrNotFound)
	}
	return nil
}

// List returns pending entries, oldest first.
func (j *RedisJournal) List(ctx context.Context) ([]models.JournalEntry, error) {
	serials, err := j.client.SMembers(ctx, journalIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	out := make([]models.JournalEntry, 0, len(serials))
	if len(serials) == 0 {
		return out, nil
	}

	keys := make([]string, len(serials))
	for i, s := range serials {
		keys[i] = journalKeyPrefix + s
	}
	values, err := j.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var entry models.JournalEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("decode journal entry: %w", err)
		}
		out = append(out, entry)
	}
	sortEntries(out)
	return out, nil
}

func sortEntries(entries []models.JournalEntry) {
	sort.Slice(entries, func(i, k int) bool {
		if entries[i].RecordedAt.Equal(entries[k].RecordedAt) {
			return entries[i].Warranty.SerialNumber < entries[k].Warranty.SerialNumber
		}
		return entries[i].RecordedAt.Before(entries[k].RecordedAt)
	})
}
