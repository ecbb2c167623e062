package service

import (
	"context"
	"encoding/json"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"testing"
	"time"
)

func newStateService() (*ChallengeStateService, *repository.MemoryKVStore) {
	kv := repository.NewMemoryKVStore()
	s := NewChallengeStateService(kv)
	return s, kv
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, _ := newStateService()
	ctx := context.Background()

	saved := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return saved }

	snap := &model.ChallengeSnapshot{
		SessionID:  "sess-1",
		GradeLevel: "4-6",
		Content:    json.RawMessage(`{"passage":"hello"}`),
		Cursor:     model.Cursor{Index: 2, Progress: 40, Answers: map[string]string{"1": "B"}},
	}
	if err := s.Save(ctx, 1, model.ChallengeReading, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if snap.Timestamp != saved.UnixMilli() {
		t.Errorf("save should stamp the snapshot, got %d", snap.Timestamp)
	}

	got := s.Load(ctx, 1, model.ChallengeReading)
	if got == nil {
		t.Fatal("load returned nil for a fresh snapshot")
	}
	if got.SessionID != "sess-1" || got.Cursor.Index != 2 || got.Cursor.Answers["1"] != "B" {
		t.Errorf("snapshot round trip mismatch: %+v", got)
	}
	if got.ChallengeType != model.ChallengeReading {
		t.Errorf("challenge type should be stamped on save, got %q", got.ChallengeType)
	}
}

func TestSnapshotStaleAfter24Hours(t *testing.T) {
	s, _ := newStateService()
	ctx := context.Background()

	saved := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return saved }
	s.Save(ctx, 1, model.ChallengeWriting, &model.ChallengeSnapshot{
		SessionID: "sess-1",
		Content:   json.RawMessage(`{"prompt":"x"}`),
	})

	// 23 小时后仍然有效
	s.Now = func() time.Time { return saved.Add(23 * time.Hour) }
	if got := s.Load(ctx, 1, model.ChallengeWriting); got == nil {
		t.Error("snapshot should survive 23h")
	}

	// 25 小时后视为过期
	s.Now = func() time.Time { return saved.Add(25 * time.Hour) }
	if got := s.Load(ctx, 1, model.ChallengeWriting); got != nil {
		t.Errorf("snapshot should be discarded after 25h, got %+v", got)
	}
}

func TestSnapshotCorruptDataDiscarded(t *testing.T) {
	s, kv := newStateService()
	ctx := context.Background()

	cases := map[string]string{
		"not json":      "{{{ not json",
		"empty content": `{"sessionId":"s","content":null,"timestamp":9999999999999}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			kv.Set(ctx, model.SnapshotKey(1, model.ChallengeGrammar), raw, 0)
			if got := s.Load(ctx, 1, model.ChallengeGrammar); got != nil {
				t.Errorf("corrupt snapshot should load as nil, got %+v", got)
			}
		})
	}
}

func TestSnapshotMissingLoadsNil(t *testing.T) {
	s, _ := newStateService()
	if got := s.Load(context.Background(), 1, model.ChallengeReading); got != nil {
		t.Errorf("missing snapshot should load as nil, got %+v", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s, _ := newStateService()
	ctx := context.Background()

	s.Save(ctx, 1, model.ChallengeReading, &model.ChallengeSnapshot{
		SessionID: "user1-reading",
		Content:   json.RawMessage(`{"a":1}`),
	})
	s.Save(ctx, 2, model.ChallengeReading, &model.ChallengeSnapshot{
		SessionID: "user2-reading",
		Content:   json.RawMessage(`{"b":2}`),
	})
	s.Save(ctx, 1, model.ChallengeWriting, &model.ChallengeSnapshot{
		SessionID: "user1-writing",
		Content:   json.RawMessage(`{"c":3}`),
	})

	if got := s.Load(ctx, 1, model.ChallengeReading); got == nil || got.SessionID != "user1-reading" {
		t.Errorf("user1 reading snapshot mismatch: %+v", got)
	}
	if got := s.Load(ctx, 2, model.ChallengeReading); got == nil || got.SessionID != "user2-reading" {
		t.Errorf("user2 reading snapshot mismatch: %+v", got)
	}
	if got := s.Load(ctx, 1, model.ChallengeWriting); got == nil || got.SessionID != "user1-writing" {
		t.Errorf("user1 writing snapshot mismatch: %+v", got)
	}
}

func TestSnapshotLastWriteWins(t *testing.T) {
	s, _ := newStateService()
	ctx := context.Background()

	s.Save(ctx, 1, model.ChallengeReading, &model.ChallengeSnapshot{
		SessionID: "first",
		Content:   json.RawMessage(`{"v":1}`),
	})
	s.Save(ctx, 1, model.ChallengeReading, &model.ChallengeSnapshot{
		SessionID: "second",
		Content:   json.RawMessage(`{"v":2}`),
	})

	got := s.Load(ctx, 1, model.ChallengeReading)
	if got == nil || got.SessionID != "second" {
		t.Errorf("later save should win, got %+v", got)
	}
}

// 完整走一遍：开始、存进度、模拟刷新恢复、完成、清快照
func TestFirstAttemptReloadCompleteFlow(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	gate := NewAttemptGateService(kv)
	state := NewChallengeStateService(kv)
	ctx := context.Background()
	day := "2024-01-01"

	if status := gate.CheckStatus(ctx, 1, model.ChallengeWriting, day); status.Attempts != 0 || status.Locked {
		t.Fatalf("fresh: %+v", status)
	}

	gate.RecordAttempt(ctx, 1, model.ChallengeWriting, day)
	if status := gate.CheckStatus(ctx, 1, model.ChallengeWriting, day); status.Attempts != 1 || status.Locked {
		t.Fatalf("after first attempt: %+v", status)
	}

	state.Save(ctx, 1, model.ChallengeWriting, &model.ChallengeSnapshot{
		SessionID: "sess",
		Content:   json.RawMessage(`{"prompt":"write a story"}`),
		Cursor:    model.Cursor{Index: 2},
	})

	// 模拟页面刷新后恢复
	snap := state.Load(ctx, 1, model.ChallengeWriting)
	if snap == nil || snap.Cursor.Index != 2 {
		t.Fatalf("reload should restore the snapshot, got %+v", snap)
	}

	gate.RecordCompletion(ctx, 1, model.ChallengeWriting, day)
	status := gate.CheckStatus(ctx, 1, model.ChallengeWriting, day)
	if status.Attempts != 1 || !status.Locked || !status.Completed {
		t.Fatalf("after completion: %+v", status)
	}

	state.Clear(ctx, 1, model.ChallengeWriting)
	if state.Load(ctx, 1, model.ChallengeWriting) != nil {
		t.Error("snapshot should be gone after clear")
	}
}

func TestSnapshotClear(t *testing.T) {
	s, kv := newStateService()
	ctx := context.Background()

	s.Save(ctx, 1, model.ChallengeReading, &model.ChallengeSnapshot{
		SessionID: "sess",
		Content:   json.RawMessage(`{"v":1}`),
	})
	s.Clear(ctx, 1, model.ChallengeReading)

	if got := s.Load(ctx, 1, model.ChallengeReading); got != nil {
		t.Errorf("cleared snapshot should load as nil, got %+v", got)
	}
	if kv.Len() != 0 {
		t.Errorf("clear should remove the key, %d entries left", kv.Len())
	}
}
