package controller

import (
	"fmt"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/service"
	"learn_my_way_backend/internal/util"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type MaterialController struct {
	MaterialRepo   *repository.MaterialRepository
	StorageService *service.StorageService
}

func NewMaterialController(materialRepo *repository.MaterialRepository, storageService *service.StorageService) *MaterialController {
	return &MaterialController{
		MaterialRepo:   materialRepo,
		StorageService: storageService,
	}
}

// @Summary 上传学习资料
// @Description 教师上传资料文件（pdf/图片/音频等）
// @Tags 资料
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "资料文件"
// @Param title formData string true "标题"
// @Param subject formData string false "学科"
// @Success 201 {object} util.Response
// @Router /api/materials [post]
func (c *MaterialController) Upload(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	allowed := false
	for _, e := range util.AllowedMaterialExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "unsupported file type: "+ext)
		return
	}

	title := ctx.PostForm("title")
	if title == "" {
		util.BadRequest(ctx, "title is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	filename := fmt.Sprintf("materials/%s-%s", time.Now().Format("20060102150405"),
		strings.ReplaceAll(fileHeader.Filename, " ", "-"))

	url, err := c.StorageService.Provider.Upload(ctx.Request.Context(), filename, src, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	material := &model.Material{
		Title:       title,
		Subject:     ctx.PostForm("subject"),
		FileURL:     url,
		ContentType: contentType,
		Size:        fileHeader.Size,
		UploaderID:  claims.UserID,
	}
	if err := c.MaterialRepo.Create(material); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, material)
}

// @Summary 资料列表
// @Tags 资料
// @Produce json
// @Security ApiKeyAuth
// @Param subject query string false "学科过滤"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response
// @Router /api/materials [get]
func (c *MaterialController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	materials, total, err := c.MaterialRepo.List(ctx.Query("subject"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  materials,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
