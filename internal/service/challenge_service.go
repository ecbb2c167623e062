package service

import (
	"context"
	"encoding/json"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/util"
	"learn_my_way_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentGenerator 外部内容生成器
type ContentGenerator interface {
	GenerateChallenge(ctx context.Context, ct model.ChallengeType, gradeLevel string) (json.RawMessage, bool)
}

// ChallengeService 把闸门、快照、生成器和档案回写串成完整的挑战流程，
// 取代前端各挑战页面里复制粘贴的同款逻辑。
type ChallengeService struct {
	Gate         *AttemptGateService
	State        *ChallengeStateService
	Generator    ContentGenerator
	ResultRepo   *repository.ChallengeResultRepository
	ProgressRepo *repository.ProgressRepository
	UserRepo     *repository.UserRepository
	Now          func() time.Time
}

func NewChallengeService(
	gate *AttemptGateService,
	state *ChallengeStateService,
	generator ContentGenerator,
	resultRepo *repository.ChallengeResultRepository,
	progressRepo *repository.ProgressRepository,
	userRepo *repository.UserRepository,
) *ChallengeService {
	return &ChallengeService{
		Gate:         gate,
		State:        state,
		Generator:    generator,
		ResultRepo:   resultRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
		Now:          time.Now,
	}
}

func (s *ChallengeService) today() string {
	return s.Now().Format(util.DateFormat)
}

// Status 查询今天的闸门状态
func (s *ChallengeService) Status(ctx context.Context, userID uint, ct model.ChallengeType) model.GateStatus {
	return s.Gate.CheckStatus(ctx, userID, ct, s.today())
}

// Start 开始或恢复一次挑战。有效快照优先恢复且不消耗尝试次数；
// 否则生成新内容、记一次尝试并落快照。
func (s *ChallengeService) Start(ctx context.Context, userID uint, ct model.ChallengeType, gradeLevel string) (*model.ChallengeSession, error) {
	today := s.today()

	status := s.Gate.CheckStatus(ctx, userID, ct, today)
	if status.Locked {
		return nil, util.ErrDailyAttemptLimit
	}

	if snap := s.State.Load(ctx, userID, ct); snap != nil {
		return &model.ChallengeSession{
			SessionID:     snap.SessionID,
			ChallengeType: ct,
			GradeLevel:    snap.GradeLevel,
			Content:       snap.Content,
			Cursor:        snap.Cursor,
			Resumed:       true,
			Status:        status,
		}, nil
	}

	content, fallback := s.Generator.GenerateChallenge(ctx, ct, gradeLevel)
	rec := s.Gate.RecordAttempt(ctx, userID, ct, today)

	snap := &model.ChallengeSnapshot{
		SessionID:  model.GenerateUUID(),
		GradeLevel: gradeLevel,
		Content:    content,
	}
	// 快照写失败不拦流程，最多丢恢复能力
	_ = s.State.Save(ctx, userID, ct, snap)

	return &model.ChallengeSession{
		SessionID:     snap.SessionID,
		ChallengeType: ct,
		GradeLevel:    gradeLevel,
		Content:       content,
		Cursor:        model.Cursor{},
		Fallback:      fallback,
		Status: model.GateStatus{
			Attempts: rec.Attempts,
			Locked:   rec.Attempts >= model.MaxDailyAttempts,
		},
	}, nil
}

// SaveProgress 推进当前会话的游标
func (s *ChallengeService) SaveProgress(ctx context.Context, userID uint, ct model.ChallengeType, cursor model.Cursor) error {
	snap := s.State.Load(ctx, userID, ct)
	if snap == nil {
		return util.ErrNoActiveSession
	}
	snap.Cursor = cursor
	return s.State.Save(ctx, userID, ct, snap)
}

// Complete 结算一次挑战：当天封锁、清快照、落成绩、发徽章加积分、回写学科进度。
// 档案回写独立于闸门，失败只记日志。
func (s *ChallengeService) Complete(ctx context.Context, userID uint, ct model.ChallengeType, score, total int) (*model.CompletionResult, error) {
	today := s.today()

	status := s.Gate.CheckStatus(ctx, userID, ct, today)
	if status.Completed {
		return nil, util.ErrChallengeCompleted
	}
	// 没消耗过尝试也没有进行中的会话，不存在可结算的挑战
	if status.Attempts == 0 && s.State.Load(ctx, userID, ct) == nil {
		return nil, util.ErrNoActiveSession
	}
	attempts := status.Attempts

	s.Gate.RecordCompletion(ctx, userID, ct, today)
	s.State.Clear(ctx, userID, ct)

	percent := score
	if total > 0 {
		percent = score * 100 / total
	}
	percent = util.ClampPercent(percent)

	badge, points := badgeForScore(ct, percent)

	result := &model.ChallengeResult{
		UserID:        userID,
		ChallengeType: ct,
		Score:         score,
		Total:         total,
		Percent:       percent,
		Badge:         badge,
		Points:        points,
		Attempts:      attempts,
		CompletedAt:   s.Now(),
	}
	if err := s.ResultRepo.Create(result); err != nil {
		return nil, err
	}

	newBadge := false
	if points > 0 {
		var err error
		newBadge, err = s.UserRepo.AwardBadge(userID, badge, points)
		if err != nil {
			logger.Log.Warn("badge award failed",
				zap.Uint("userId", userID), zap.String("badge", badge), zap.Error(err))
		}
	}

	if err := s.ProgressRepo.Upsert(userID, string(ct), percent); err != nil {
		logger.Log.Warn("subject progress write failed",
			zap.Uint("userId", userID), zap.String("subject", string(ct)), zap.Error(err))
	}

	return &model.CompletionResult{
		ChallengeType: ct,
		Score:         score,
		Total:         total,
		Percent:       percent,
		Badge:         badge,
		Points:        points,
		NewBadge:      newBadge,
		Status:        s.Gate.CheckStatus(ctx, userID, ct, today),
	}, nil
}

// Reattempt 显式重开：清快照后按新尝试走一遍生成流程。
// 尝试上限是唯一闸门，这里不会回退任何计数。
func (s *ChallengeService) Reattempt(ctx context.Context, userID uint, ct model.ChallengeType, gradeLevel string) (*model.ChallengeSession, error) {
	today := s.today()

	status := s.Gate.CheckStatus(ctx, userID, ct, today)
	if status.Locked {
		return nil, util.ErrDailyAttemptLimit
	}

	s.Gate.Reset(ctx, userID, ct)

	content, fallback := s.Generator.GenerateChallenge(ctx, ct, gradeLevel)
	rec := s.Gate.RecordAttempt(ctx, userID, ct, today)

	snap := &model.ChallengeSnapshot{
		SessionID:  model.GenerateUUID(),
		GradeLevel: gradeLevel,
		Content:    content,
	}
	_ = s.State.Save(ctx, userID, ct, snap)

	return &model.ChallengeSession{
		SessionID:     snap.SessionID,
		ChallengeType: ct,
		GradeLevel:    gradeLevel,
		Content:       content,
		Cursor:        model.Cursor{},
		Fallback:      fallback,
		Status: model.GateStatus{
			Attempts: rec.Attempts,
			Locked:   rec.Attempts >= model.MaxDailyAttempts,
		},
	}, nil
}

// Results 用户的成绩历史
func (s *ChallengeService) Results(userID uint, limit int) ([]model.ChallengeResult, error) {
	return s.ResultRepo.ListByUser(userID, limit)
}

// badgeForScore 按得分率发徽章和积分，阈值沿用前端各挑战页面的档位
func badgeForScore(ct model.ChallengeType, percent int) (string, int) {
	subject := strings.ToUpper(string(ct)[:1]) + string(ct)[1:]
	switch {
	case percent >= 90:
		return subject + " Master", 20
	case percent >= 75:
		return subject + " Pro", 15
	case percent >= 50:
		return subject + " Beginner", 10
	}
	return "", 0
}
