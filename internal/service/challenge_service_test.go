package service

import (
	"context"
	"encoding/json"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/util"
	"testing"
	"time"
)

// stubGenerator 每次返回递增编号的内容，便于区分是恢复还是新生成
type stubGenerator struct {
	calls int
}

func (g *stubGenerator) GenerateChallenge(ctx context.Context, ct model.ChallengeType, gradeLevel string) (json.RawMessage, bool) {
	g.calls++
	payload, _ := json.Marshal(map[string]int{"generation": g.calls})
	return payload, false
}

func newChallengeService() (*ChallengeService, *stubGenerator) {
	kv := repository.NewMemoryKVStore()
	gen := &stubGenerator{}
	s := NewChallengeService(
		NewAttemptGateService(kv),
		NewChallengeStateService(kv),
		gen,
		nil, nil, nil,
	)
	s.Now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return s, gen
}

func TestStartConsumesAttempt(t *testing.T) {
	s, gen := newChallengeService()
	ctx := context.Background()

	sess, err := s.Start(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.Resumed {
		t.Error("first start should not be a resume")
	}
	if sess.Status.Attempts != 1 || sess.Status.Locked {
		t.Errorf("first start status: %+v", sess.Status)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls: got %d, want 1", gen.calls)
	}
	if sess.SessionID == "" {
		t.Error("session id should be assigned")
	}
}

// 有效快照存在时恢复会话，不消耗尝试次数也不触发生成
func TestStartResumesWithoutConsumingAttempt(t *testing.T) {
	s, gen := newChallengeService()
	ctx := context.Background()

	first, err := s.Start(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	s.SaveProgress(ctx, 1, model.ChallengeReading, model.Cursor{Index: 1, Progress: 20})

	second, err := s.Start(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !second.Resumed {
		t.Fatal("second start should resume the snapshot")
	}
	if second.SessionID != first.SessionID {
		t.Errorf("resumed session id mismatch: %q vs %q", second.SessionID, first.SessionID)
	}
	if second.Cursor.Index != 1 || second.Cursor.Progress != 20 {
		t.Errorf("resumed cursor mismatch: %+v", second.Cursor)
	}
	if second.Status.Attempts != 1 {
		t.Errorf("resume must not consume an attempt, got %d", second.Status.Attempts)
	}
	if gen.calls != 1 {
		t.Errorf("resume must not regenerate, generator calls=%d", gen.calls)
	}
}

func TestSaveProgressWithoutSession(t *testing.T) {
	s, _ := newChallengeService()

	err := s.SaveProgress(context.Background(), 1, model.ChallengeReading, model.Cursor{Index: 1})
	if err != util.ErrNoActiveSession {
		t.Errorf("got %v, want ErrNoActiveSession", err)
	}
}

// 重开丢弃快照、生成新内容并消耗第二次尝试；之后再开始被拒
func TestReattemptThenLocked(t *testing.T) {
	s, gen := newChallengeService()
	ctx := context.Background()

	first, err := s.Start(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := s.Reattempt(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("reattempt: %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Error("reattempt should mint a new session")
	}
	if string(second.Content) == string(first.Content) {
		t.Error("reattempt should carry newly generated content")
	}
	if second.Status.Attempts != 2 || !second.Status.Locked {
		t.Errorf("after reattempt: %+v", second.Status)
	}
	if gen.calls != 2 {
		t.Errorf("generator calls: got %d, want 2", gen.calls)
	}

	if _, err := s.Start(ctx, 1, model.ChallengeReading, "4-6"); err != util.ErrDailyAttemptLimit {
		t.Errorf("third start should hit the daily limit, got %v", err)
	}
	if _, err := s.Reattempt(ctx, 1, model.ChallengeReading, "4-6"); err != util.ErrDailyAttemptLimit {
		t.Errorf("reattempt past the limit should be rejected, got %v", err)
	}
}

// 跨天后同一用户可以重新开始
func TestStartUnlocksNextDay(t *testing.T) {
	s, _ := newChallengeService()
	ctx := context.Background()

	s.Start(ctx, 1, model.ChallengeReading, "4-6")
	s.Reattempt(ctx, 1, model.ChallengeReading, "4-6")
	if _, err := s.Start(ctx, 1, model.ChallengeReading, "4-6"); err != util.ErrDailyAttemptLimit {
		t.Fatalf("expected daily limit, got %v", err)
	}

	s.Now = func() time.Time { return time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC) }

	// 昨天的快照还在但闸门已按新日期放行；消耗新一天的第一次尝试
	sess, err := s.Start(ctx, 1, model.ChallengeReading, "4-6")
	if err != nil {
		t.Fatalf("next-day start: %v", err)
	}
	if sess.Resumed {
		// 快照未过期时恢复是允许的，但尝试计数必须归零重来
		if sess.Status.Attempts >= model.MaxDailyAttempts {
			t.Errorf("next day should not inherit attempt count, got %+v", sess.Status)
		}
	} else if sess.Status.Attempts != 1 {
		t.Errorf("next-day first attempt: %+v", sess.Status)
	}
}

func TestStartIsolatedPerUserAndType(t *testing.T) {
	s, _ := newChallengeService()
	ctx := context.Background()

	s.Start(ctx, 1, model.ChallengeReading, "4-6")
	s.Reattempt(ctx, 1, model.ChallengeReading, "4-6")

	if _, err := s.Start(ctx, 2, model.ChallengeReading, "4-6"); err != nil {
		t.Errorf("other user should be unaffected: %v", err)
	}
	if _, err := s.Start(ctx, 1, model.ChallengeGrammar, "4-6"); err != nil {
		t.Errorf("other challenge type should be unaffected: %v", err)
	}
}

// 没开始过也没有会话，不存在可结算的挑战
func TestCompleteWithoutSession(t *testing.T) {
	s, _ := newChallengeService()

	if _, err := s.Complete(context.Background(), 1, model.ChallengeReading, 3, 3); err != util.ErrNoActiveSession {
		t.Errorf("got %v, want ErrNoActiveSession", err)
	}
}

// 当天已完成后重放 complete 被拒，不会重复结算
func TestCompleteRejectedWhenAlreadyCompleted(t *testing.T) {
	s, _ := newChallengeService()
	ctx := context.Background()

	if _, err := s.Start(ctx, 1, model.ChallengeReading, "4-6"); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Gate.RecordCompletion(ctx, 1, model.ChallengeReading, s.today())

	if _, err := s.Complete(ctx, 1, model.ChallengeReading, 3, 3); err != util.ErrChallengeCompleted {
		t.Errorf("got %v, want ErrChallengeCompleted", err)
	}
	// 跨天后封锁解除
	s.Now = func() time.Time { return time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC) }
	if status := s.Status(ctx, 1, model.ChallengeReading); status.Completed {
		t.Errorf("completion must not leak into the next day, got %+v", status)
	}
}

func TestBadgeForScore(t *testing.T) {
	tests := []struct {
		percent int
		badge   string
		points  int
	}{
		{100, "Reading Master", 20},
		{90, "Reading Master", 20},
		{89, "Reading Pro", 15},
		{75, "Reading Pro", 15},
		{74, "Reading Beginner", 10},
		{50, "Reading Beginner", 10},
		{49, "", 0},
		{0, "", 0},
	}
	for _, tt := range tests {
		badge, points := badgeForScore(model.ChallengeReading, tt.percent)
		if badge != tt.badge || points != tt.points {
			t.Errorf("percent=%d: got (%q, %d), want (%q, %d)", tt.percent, badge, points, tt.badge, tt.points)
		}
	}

	if badge, _ := badgeForScore(model.ChallengeGrammar, 95); badge != "Grammar Master" {
		t.Errorf("badge should carry the subject name, got %q", badge)
	}
}
