package model

import "testing"

func TestParseChallengeType(t *testing.T) {
	for _, valid := range []string{"reading", "writing", "pronunciation", "grammar"} {
		if _, ok := ParseChallengeType(valid); !ok {
			t.Errorf("%q should parse", valid)
		}
	}
	for _, invalid := range []string{"", "Reading", "math", "reading "} {
		if _, ok := ParseChallengeType(invalid); ok {
			t.Errorf("%q should not parse", invalid)
		}
	}
}

// 键形沿用前端 localStorage 时代的后缀，前缀按用户隔离
func TestChallengeKeys(t *testing.T) {
	if got := AttemptKey(7, ChallengeReading, "2025-03-10"); got != "challenge:7:reading-attempts-2025-03-10" {
		t.Errorf("attempt key: %q", got)
	}
	if got := CompletionKey(7, ChallengeReading, "2025-03-10"); got != "challenge:7:reading-completed-2025-03-10" {
		t.Errorf("completion key: %q", got)
	}
	if got := SnapshotKey(7, ChallengeWriting); got != "challenge:7:writing-challenge-state" {
		t.Errorf("snapshot key: %q", got)
	}

	if AttemptKey(1, ChallengeReading, "2025-03-10") == AttemptKey(2, ChallengeReading, "2025-03-10") {
		t.Error("keys must differ per user")
	}
	if AttemptKey(1, ChallengeReading, "2025-03-10") == AttemptKey(1, ChallengeWriting, "2025-03-10") {
		t.Error("keys must differ per challenge type")
	}
}
