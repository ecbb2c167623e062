package controller

import (
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/service"
	"learn_my_way_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressRepo *repository.ProgressRepository
	ResultRepo   *repository.ChallengeResultRepository
	UserService  *service.UserService
}

func NewProgressController(progressRepo *repository.ProgressRepository, resultRepo *repository.ChallengeResultRepository, userService *service.UserService) *ProgressController {
	return &ProgressController{
		ProgressRepo: progressRepo,
		ResultRepo:   resultRepo,
		UserService:  userService,
	}
}

// @Summary 学科进度
// @Description 当前用户的各学科进度百分比
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressRepo.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary 全部学生成绩
// @Description 教师视角的成绩列表，分页
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/teacher/results [get]
func (c *ProgressController) GetAllResults(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	results, total, err := c.ResultRepo.ListAll(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  results,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// @Summary 学生列表
// @Description 教师视角的学生名单
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/students [get]
func (c *ProgressController) GetStudents(ctx *gin.Context) {
	students, err := c.UserService.ListStudents()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, students)
}
