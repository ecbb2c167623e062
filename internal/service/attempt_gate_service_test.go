package service

import (
	"context"
	"encoding/json"
	"errors"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"testing"
	"time"
)

const (
	day1 = "2025-03-10"
	day2 = "2025-03-11"
)

// failingKVStore 所有操作都报错，用来验证 fail-open
type failingKVStore struct{}

func (failingKVStore) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (failingKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (failingKVStore) Del(ctx context.Context, keys ...string) error {
	return errors.New("connection refused")
}

func TestCheckStatusFreshDay(t *testing.T) {
	gate := NewAttemptGateService(repository.NewMemoryKVStore())

	status := gate.CheckStatus(context.Background(), 1, model.ChallengeReading, day1)
	if status.Attempts != 0 || status.Completed || status.Locked {
		t.Errorf("fresh day should be unlocked, got %+v", status)
	}
}

func TestRecordAttemptLocksAtCeiling(t *testing.T) {
	gate := NewAttemptGateService(repository.NewMemoryKVStore())
	ctx := context.Background()

	rec := gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	if rec.Attempts != 1 {
		t.Fatalf("first attempt: got %d, want 1", rec.Attempts)
	}
	if status := gate.CheckStatus(ctx, 1, model.ChallengeReading, day1); status.Locked {
		t.Errorf("should not be locked after 1 attempt, got %+v", status)
	}

	rec = gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	if rec.Attempts != 2 {
		t.Fatalf("second attempt: got %d, want 2", rec.Attempts)
	}
	status := gate.CheckStatus(ctx, 1, model.ChallengeReading, day1)
	if !status.Locked || status.Attempts != 2 {
		t.Errorf("should be locked after 2 attempts, got %+v", status)
	}
}

// 超过上限再记一次不会崩，仍保持锁定
func TestRecordAttemptPastCeilingIsSafe(t *testing.T) {
	gate := NewAttemptGateService(repository.NewMemoryKVStore())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		gate.RecordAttempt(ctx, 1, model.ChallengeGrammar, day1)
	}

	status := gate.CheckStatus(ctx, 1, model.ChallengeGrammar, day1)
	if !status.Locked {
		t.Errorf("should stay locked past ceiling, got %+v", status)
	}
	if status.Attempts != 3 {
		t.Errorf("attempts should keep counting, got %d", status.Attempts)
	}
}

func TestCompletionLocksRegardlessOfAttempts(t *testing.T) {
	for _, attempts := range []int{0, 1, 2} {
		gate := NewAttemptGateService(repository.NewMemoryKVStore())
		ctx := context.Background()

		for i := 0; i < attempts; i++ {
			gate.RecordAttempt(ctx, 1, model.ChallengeWriting, day1)
		}
		gate.RecordCompletion(ctx, 1, model.ChallengeWriting, day1)

		status := gate.CheckStatus(ctx, 1, model.ChallengeWriting, day1)
		if !status.Completed || !status.Locked {
			t.Errorf("attempts=%d: completion should lock the day, got %+v", attempts, status)
		}
	}
}

func TestDayRolloverUnlocks(t *testing.T) {
	gate := NewAttemptGateService(repository.NewMemoryKVStore())
	ctx := context.Background()

	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	gate.RecordCompletion(ctx, 1, model.ChallengeReading, day1)

	if status := gate.CheckStatus(ctx, 1, model.ChallengeReading, day1); !status.Locked {
		t.Fatalf("day1 should be locked, got %+v", status)
	}

	// 新的一天，旧记录视为不存在
	status := gate.CheckStatus(ctx, 1, model.ChallengeReading, day2)
	if status.Attempts != 0 || status.Completed || status.Locked {
		t.Errorf("day2 should start fresh, got %+v", status)
	}

	rec := gate.RecordAttempt(ctx, 1, model.ChallengeReading, day2)
	if rec.Attempts != 1 {
		t.Errorf("day2 first attempt: got %d, want 1", rec.Attempts)
	}
}

// 键是当天的但值里的日期陈旧（例如手工改过数据），按不存在处理
func TestStaleDateInRecordIgnored(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	gate := NewAttemptGateService(kv)
	ctx := context.Background()

	stale, _ := json.Marshal(model.AttemptRecord{Attempts: 2, Date: day1})
	kv.Set(ctx, model.AttemptKey(1, model.ChallengeReading, day2), string(stale), 0)

	status := gate.CheckStatus(ctx, 1, model.ChallengeReading, day2)
	if status.Attempts != 0 || status.Locked {
		t.Errorf("stale record date should be ignored, got %+v", status)
	}
}

func TestRecordAttemptDropsPreviousDayKeys(t *testing.T) {
	kv := repository.NewMemoryKVStore()
	gate := NewAttemptGateService(kv)
	ctx := context.Background()

	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	gate.RecordCompletion(ctx, 1, model.ChallengeReading, day1)

	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day2)

	if _, err := kv.Get(ctx, model.AttemptKey(1, model.ChallengeReading, day1)); err != repository.ErrKeyNotFound {
		t.Errorf("day1 attempt key should be dropped, got err=%v", err)
	}
	if _, err := kv.Get(ctx, model.CompletionKey(1, model.ChallengeReading, day1)); err != repository.ErrKeyNotFound {
		t.Errorf("day1 completion key should be dropped, got err=%v", err)
	}
}

func TestGateIsolationAcrossUsersAndTypes(t *testing.T) {
	gate := NewAttemptGateService(repository.NewMemoryKVStore())
	ctx := context.Background()

	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)
	gate.RecordAttempt(ctx, 1, model.ChallengeReading, day1)

	if status := gate.CheckStatus(ctx, 2, model.ChallengeReading, day1); status.Locked {
		t.Errorf("other user should be unaffected, got %+v", status)
	}
	if status := gate.CheckStatus(ctx, 1, model.ChallengeWriting, day1); status.Locked {
		t.Errorf("other challenge type should be unaffected, got %+v", status)
	}
}

func TestCheckStatusFailsOpenOnStorageError(t *testing.T) {
	gate := NewAttemptGateService(failingKVStore{})

	status := gate.CheckStatus(context.Background(), 1, model.ChallengeReading, day1)
	if status.Locked {
		t.Errorf("storage failure must not lock the learner out, got %+v", status)
	}
}

func TestRecordAttemptSurvivesStorageError(t *testing.T) {
	gate := NewAttemptGateService(failingKVStore{})

	rec := gate.RecordAttempt(context.Background(), 1, model.ChallengeReading, day1)
	if rec.Attempts != 1 {
		t.Errorf("attempt should still count in-memory, got %d", rec.Attempts)
	}
}
