package controller

import (
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/service"
	"learn_my_way_backend/internal/util"
	"learn_my_way_backend/pkg/monitoring"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

func (c *ChallengeController) challengeType(ctx *gin.Context) (model.ChallengeType, bool) {
	ct, ok := model.ParseChallengeType(ctx.Param("type"))
	if !ok {
		util.BadRequest(ctx, util.ErrUnknownChallengeType.Error())
		return "", false
	}
	return ct, true
}

// @Summary 查询挑战状态
// @Description 当前用户今天在该挑战类型上的尝试次数与锁定状态
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "挑战类型" Enums(reading, writing, pronunciation, grammar)
// @Success 200 {object} util.Response
// @Router /api/challenges/{type}/status [get]
func (c *ChallengeController) GetStatus(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ct, ok := c.challengeType(ctx)
	if !ok {
		return
	}

	status := c.ChallengeService.Status(ctx.Request.Context(), claims.UserID, ct)
	util.Success(ctx, status)
}

type StartChallengeRequest struct {
	GradeLevel string `json:"gradeLevel"`
}

// @Summary 开始挑战
// @Description 恢复进行中的会话或生成新内容并消耗一次尝试
// @Tags 挑战
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "挑战类型" Enums(reading, writing, pronunciation, grammar)
// @Param body body StartChallengeRequest false "年级区间"
// @Success 200 {object} util.Response
// @Failure 429 {object} util.Response
// @Router /api/challenges/{type}/start [post]
func (c *ChallengeController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ct, ok := c.challengeType(ctx)
	if !ok {
		return
	}

	var req StartChallengeRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.GradeLevel == "" {
		req.GradeLevel = "4-6"
	}

	session, err := c.ChallengeService.Start(ctx.Request.Context(), claims.UserID, ct, req.GradeLevel)
	if err != nil {
		if err == util.ErrDailyAttemptLimit {
			util.TooManyRequests(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if !session.Resumed {
		monitoring.ChallengeAttempts.WithLabelValues(string(ct)).Inc()
		if session.Fallback {
			monitoring.GeneratorFallbacks.WithLabelValues(string(ct)).Inc()
		}
	}

	util.Success(ctx, session)
}

type SaveProgressRequest struct {
	Cursor model.Cursor `json:"cursor" binding:"required"`
}

// @Summary 保存挑战进度
// @Description 推进当前会话的游标，刷新后可恢复
// @Tags 挑战
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "挑战类型" Enums(reading, writing, pronunciation, grammar)
// @Param body body SaveProgressRequest true "进度游标"
// @Success 200 {object} util.Response
// @Router /api/challenges/{type}/progress [put]
func (c *ChallengeController) SaveProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ct, ok := c.challengeType(ctx)
	if !ok {
		return
	}

	var req SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.ChallengeService.SaveProgress(ctx.Request.Context(), claims.UserID, ct, req.Cursor); err != nil {
		if err == util.ErrNoActiveSession {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "progress saved"})
}

type CompleteChallengeRequest struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// @Summary 完成挑战
// @Description 结算成绩，当天封锁该挑战，回写学科进度并发放徽章积分
// @Tags 挑战
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "挑战类型" Enums(reading, writing, pronunciation, grammar)
// @Param body body CompleteChallengeRequest true "得分"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 429 {object} util.Response
// @Router /api/challenges/{type}/complete [post]
func (c *ChallengeController) Complete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ct, ok := c.challengeType(ctx)
	if !ok {
		return
	}

	var req CompleteChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ChallengeService.Complete(ctx.Request.Context(), claims.UserID, ct, req.Score, req.Total)
	if err != nil {
		if err == util.ErrChallengeCompleted {
			util.TooManyRequests(ctx, err.Error())
			return
		}
		if err == util.ErrNoActiveSession {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 重新挑战
// @Description 放弃当前会话并消耗一次新尝试，达到每日上限后不可用
// @Tags 挑战
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param type path string true "挑战类型" Enums(reading, writing, pronunciation, grammar)
// @Param body body StartChallengeRequest false "年级区间"
// @Success 200 {object} util.Response
// @Failure 429 {object} util.Response
// @Router /api/challenges/{type}/reattempt [post]
func (c *ChallengeController) Reattempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	ct, ok := c.challengeType(ctx)
	if !ok {
		return
	}

	var req StartChallengeRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.GradeLevel == "" {
		req.GradeLevel = "4-6"
	}

	session, err := c.ChallengeService.Reattempt(ctx.Request.Context(), claims.UserID, ct, req.GradeLevel)
	if err != nil {
		if err == util.ErrDailyAttemptLimit {
			util.TooManyRequests(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	monitoring.ChallengeAttempts.WithLabelValues(string(ct)).Inc()
	if session.Fallback {
		monitoring.GeneratorFallbacks.WithLabelValues(string(ct)).Inc()
	}

	util.Success(ctx, session)
}

// @Summary 成绩历史
// @Tags 挑战
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "数量上限"
// @Success 200 {object} util.Response
// @Router /api/challenges/results [get]
func (c *ChallengeController) GetResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	results, err := c.ChallengeService.Results(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}
