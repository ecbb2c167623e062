package model

import "encoding/json"

// ChallengeSession 返回给前端的会话视图
type ChallengeSession struct {
	SessionID     string          `json:"sessionId"`
	ChallengeType ChallengeType   `json:"challengeType"`
	GradeLevel    string          `json:"gradeLevel"`
	Content       json.RawMessage `json:"content"`
	Cursor        Cursor          `json:"cursor"`
	Resumed       bool            `json:"resumed"`  // true 表示恢复自快照，未消耗新尝试
	Fallback      bool            `json:"fallback"` // true 表示内容来自静态兜底
	Status        GateStatus      `json:"status"`
}

// CompletionResult 完成挑战后的结算信息
type CompletionResult struct {
	ChallengeType ChallengeType `json:"challengeType"`
	Score         int           `json:"score"`
	Total         int           `json:"total"`
	Percent       int           `json:"percent"`
	Badge         string        `json:"badge,omitempty"`
	Points        int           `json:"points"`
	NewBadge      bool          `json:"newBadge"`
	Status        GateStatus    `json:"status"`
}
