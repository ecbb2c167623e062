package service

import (
	"context"
	"encoding/json"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/util"
	"learn_my_way_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// gateKeyTTL 闸门键的兜底过期时间。过期主要靠读取时的日期比对（懒失效），
// TTL 只是防止 Redis 里堆积旧键。
const gateKeyTTL = 48 * time.Hour

// AttemptGateService 按 (用户, 挑战类型, 日期) 维护每日尝试计数与完成标记，
// 决定还能否开始新尝试。日期一律由调用方传入，服务本身不取时钟。
type AttemptGateService struct {
	KV repository.KeyValueStore
}

func NewAttemptGateService(kv repository.KeyValueStore) *AttemptGateService {
	return &AttemptGateService{KV: kv}
}

// CheckStatus 纯读取。记录缺失、日期陈旧、存储故障都视为未锁定——
// 存储故障时宁可放行也不无故拦住学习者（fail-open）。
func (s *AttemptGateService) CheckStatus(ctx context.Context, userID uint, ct model.ChallengeType, today string) model.GateStatus {
	var status model.GateStatus

	completedVal, err := s.KV.Get(ctx, model.CompletionKey(userID, ct, today))
	if err != nil && err != repository.ErrKeyNotFound {
		logger.Log.Warn("attempt gate read failed, failing open",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
		return model.GateStatus{}
	}
	status.Completed = err == nil && completedVal == "true"

	raw, err := s.KV.Get(ctx, model.AttemptKey(userID, ct, today))
	if err == nil {
		var rec model.AttemptRecord
		if jsonErr := json.Unmarshal([]byte(raw), &rec); jsonErr == nil && rec.Date == today {
			status.Attempts = rec.Attempts
		}
	} else if err != repository.ErrKeyNotFound {
		logger.Log.Warn("attempt gate read failed, failing open",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
		return model.GateStatus{}
	}

	status.Locked = status.Attempts >= model.MaxDailyAttempts || status.Completed
	return status
}

// RecordAttempt 把当天尝试数加一（无记录则从 1 开始）。非幂等，
// 调用方必须且只在真正开始一次尝试时调用。写失败只记日志，不拦流程。
func (s *AttemptGateService) RecordAttempt(ctx context.Context, userID uint, ct model.ChallengeType, today string) model.AttemptRecord {
	rec := model.AttemptRecord{Date: today}

	if raw, err := s.KV.Get(ctx, model.AttemptKey(userID, ct, today)); err == nil {
		var prev model.AttemptRecord
		if jsonErr := json.Unmarshal([]byte(raw), &prev); jsonErr == nil && prev.Date == today {
			rec.Attempts = prev.Attempts
		}
	}
	rec.Attempts++

	payload, _ := json.Marshal(rec)
	if err := s.KV.Set(ctx, model.AttemptKey(userID, ct, today), string(payload), gateKeyTTL); err != nil {
		logger.Log.Warn("attempt gate write failed",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
	}

	s.dropPreviousDay(ctx, userID, ct, today)
	return rec
}

// RecordCompletion 标记当天已完成，之后 CheckStatus 当天一直返回锁定
func (s *AttemptGateService) RecordCompletion(ctx context.Context, userID uint, ct model.ChallengeType, today string) {
	if err := s.KV.Set(ctx, model.CompletionKey(userID, ct, today), "true", gateKeyTTL); err != nil {
		logger.Log.Warn("completion write failed",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
	}
}

// Reset 只清掉进行中的快照，让下一次尝试拿到全新内容。
// 不回退尝试计数，也不清完成标记——每日上限是唯一的闸门。
func (s *AttemptGateService) Reset(ctx context.Context, userID uint, ct model.ChallengeType) {
	if err := s.KV.Del(ctx, model.SnapshotKey(userID, ct)); err != nil {
		logger.Log.Warn("snapshot reset failed",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
	}
}

// dropPreviousDay 顺手删掉前一天的键。失败无所谓，懒失效兜底。
func (s *AttemptGateService) dropPreviousDay(ctx context.Context, userID uint, ct model.ChallengeType, today string) {
	t, err := time.Parse(util.DateFormat, today)
	if err != nil {
		return
	}
	yesterday := t.AddDate(0, 0, -1).Format(util.DateFormat)
	_ = s.KV.Del(ctx,
		model.AttemptKey(userID, ct, yesterday),
		model.CompletionKey(userID, ct, yesterday),
	)
}
