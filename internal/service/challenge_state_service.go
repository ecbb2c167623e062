package service

import (
	"context"
	"encoding/json"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// ChallengeStateService 持久化可恢复的挑战进度快照，刷新页面不丢进度。
// 每个 (用户, 挑战类型) 只有一份快照，后写覆盖先写。
type ChallengeStateService struct {
	KV  repository.KeyValueStore
	Now func() time.Time
}

func NewChallengeStateService(kv repository.KeyValueStore) *ChallengeStateService {
	return &ChallengeStateService{KV: kv, Now: time.Now}
}

// Save 序列化快照并盖上保存时刻的时间戳
func (s *ChallengeStateService) Save(ctx context.Context, userID uint, ct model.ChallengeType, snap *model.ChallengeSnapshot) error {
	snap.ChallengeType = ct
	snap.Timestamp = s.Now().UnixMilli()

	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	if err := s.KV.Set(ctx, model.SnapshotKey(userID, ct), string(payload), model.SnapshotTTL); err != nil {
		logger.Log.Warn("challenge snapshot save failed",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
		return err
	}
	return nil
}

// Load 读取当前快照。缺失、损坏、超过 24 小时都返回 nil，
// 调用方此时应当重新生成内容。
func (s *ChallengeStateService) Load(ctx context.Context, userID uint, ct model.ChallengeType) *model.ChallengeSnapshot {
	raw, err := s.KV.Get(ctx, model.SnapshotKey(userID, ct))
	if err != nil {
		if err != repository.ErrKeyNotFound {
			logger.Log.Warn("challenge snapshot read failed",
				zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
		}
		return nil
	}

	var snap model.ChallengeSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		logger.Log.Debug("discarding corrupt challenge snapshot",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
		return nil
	}

	if len(snap.Content) == 0 {
		return nil
	}
	if s.Now().UnixMilli()-snap.Timestamp > model.SnapshotTTL.Milliseconds() {
		return nil
	}
	return &snap
}

// Clear 删除快照，完成或显式重开时调用
func (s *ChallengeStateService) Clear(ctx context.Context, userID uint, ct model.ChallengeType) {
	if err := s.KV.Del(ctx, model.SnapshotKey(userID, ct)); err != nil {
		logger.Log.Warn("challenge snapshot clear failed",
			zap.Uint("userId", userID), zap.String("challengeType", string(ct)), zap.Error(err))
	}
}
