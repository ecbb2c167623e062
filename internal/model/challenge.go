package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChallengeType 区分共享同一套每日闯关流程的挑战类型
type ChallengeType string

const (
	ChallengeReading       ChallengeType = "reading"
	ChallengeWriting       ChallengeType = "writing"
	ChallengePronunciation ChallengeType = "pronunciation"
	ChallengeGrammar       ChallengeType = "grammar"
)

// MaxDailyAttempts 每个挑战类型每天最多可开始的次数
const MaxDailyAttempts = 2

// SnapshotTTL 超过该时长的进度快照视为过期，加载时丢弃
const SnapshotTTL = 24 * time.Hour

var challengeTypes = map[ChallengeType]bool{
	ChallengeReading:       true,
	ChallengeWriting:       true,
	ChallengePronunciation: true,
	ChallengeGrammar:       true,
}

func ParseChallengeType(s string) (ChallengeType, bool) {
	ct := ChallengeType(s)
	return ct, challengeTypes[ct]
}

// AttemptRecord 某用户某挑战类型当天的尝试计数。
// date 字段与键中的日期一致，读取时不一致视为记录不存在。
type AttemptRecord struct {
	Attempts int    `json:"attempts"`
	Date     string `json:"date"`
}

// GateStatus 当天的闸门状态：attempts 达到上限或已完成即锁定
type GateStatus struct {
	Attempts  int  `json:"attempts"`
	Completed bool `json:"completed"`
	Locked    bool `json:"locked"`
}

// Cursor 挑战会话内的进度位置
type Cursor struct {
	Index    int               `json:"index"`
	Answers  map[string]string `json:"answers,omitempty"`
	Progress int               `json:"progress"`
}

// ChallengeSnapshot 可恢复的进行中挑战会话。
// Content 是生成器返回的原始负载，本服务不解释其内部结构。
type ChallengeSnapshot struct {
	SessionID     string          `json:"sessionId"`
	ChallengeType ChallengeType   `json:"challengeType"`
	GradeLevel    string          `json:"gradeLevel"`
	Content       json.RawMessage `json:"content"`
	Cursor        Cursor          `json:"cursor"`
	Timestamp     int64           `json:"timestamp"` // 保存时刻，Unix 毫秒
}

// Redis 键沿用前端 localStorage 时代的键形，外加按用户隔离的命名空间前缀。
// 改动键形需要升级前缀，避免误读旧格式。

func AttemptKey(userID uint, ct ChallengeType, date string) string {
	return fmt.Sprintf("challenge:%d:%s-attempts-%s", userID, ct, date)
}

func CompletionKey(userID uint, ct ChallengeType, date string) string {
	return fmt.Sprintf("challenge:%d:%s-completed-%s", userID, ct, date)
}

func SnapshotKey(userID uint, ct ChallengeType) string {
	return fmt.Sprintf("challenge:%d:%s-challenge-state", userID, ct)
}
