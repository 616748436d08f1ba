package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitapat/internal/api/middleware"
	"pitapat/internal/dto"
	"pitapat/internal/service"
	"pitapat/pkg/responses"
	"pitapat/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
	buildService   service.BuildService
	deployService  service.DeployService
}

func NewProjectHandler(projectService service.ProjectService, buildService service.BuildService, deployService service.DeployService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		buildService:   buildService,
		deployService:  deployService,
	}
}

// List 项目列表
// @Summary 当前用户的项目列表
// @Tags 项目
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.ProjectItem
// @Router /project [get]
func (h *ProjectHandler) List(c *gin.Context) {
	items, err := h.projectService.List(c.Request.Context(), middleware.GetToken(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, items)
}

// Detail 项目详情
// @Summary 项目详情, 包含构建/部署记录
// @Tags 项目
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "项目ID"
// @Success 200 {object} dto.ProjectDetail
// @Failure 404 {object} responses.ErrorResponse
// @Router /project/{id} [get]
func (h *ProjectHandler) Detail(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	detail, err := h.projectService.Detail(c.Request.Context(), param.ID, middleware.GetToken(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, detail)
}

// Delete 删除项目
// @Summary 删除项目, 同时卸载 release 和 DNS 记录
// @Tags 项目
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "项目ID"
// @Success 200 {object} responses.MessageResponse
// @Router /project/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), param.ID, middleware.GetToken(c)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.OK(c)
}

// CheckSubdomain 子域名是否可用
// @Summary 检查子域名
// @Tags 项目
// @Produce json
// @Param name query string true "子域名"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse "status 4000: 子域名已存在"
// @Router /project/subdomain/check [get]
func (h *ProjectHandler) CheckSubdomain(c *gin.Context) {
	var query dto.SubdomainQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.projectService.CheckSubdomain(c.Request.Context(), query.Name); err != nil {
		responses.Error(c, err)
		return
	}
	responses.OK(c)
}

// Create 创建项目
// @Summary 创建项目并安装 release
// @Tags 项目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 200 {object} dto.CreatedResponse
// @Router /project/create [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.projectService.Create(c.Request.Context(), middleware.GetToken(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, resp)
}

// Build 触发构建
// @Summary 以仓库最新提交触发构建
// @Tags 项目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.IDRequest true "项目ID"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse "status 4001: 构建已存在"
// @Router /project/build [post]
func (h *ProjectHandler) Build(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.buildService.Build(c.Request.Context(), req.ID, middleware.GetToken(c)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.OK(c)
}

// Deploy 发布构建
// @Summary 发布指定构建
// @Tags 项目
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body dto.IDRequest true "构建ID"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse "status 4001: 已是当前部署"
// @Router /project/deploy [post]
func (h *ProjectHandler) Deploy(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.deployService.Deploy(c.Request.Context(), req.ID, middleware.GetToken(c)); err != nil {
		responses.Error(c, err)
		return
	}
	responses.OK(c)
}

// DeployStatus 查询发布状态
// @Summary 查询一次发布健康状态, 终态时更新项目
// @Tags 项目
// @Produce json
// @Security ApiKeyAuth
// @Param buildId query int true "构建ID"
// @Success 200 {object} dto.DeployStatusResponse
// @Router /project/deploy/status [get]
func (h *ProjectHandler) DeployStatus(c *gin.Context) {
	var query dto.DeployStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.deployService.Status(c.Request.Context(), query.BuildID, middleware.GetToken(c))
	if err != nil {
		responses.Error(c, err)
		return
	}
	responses.Success(c, resp)
}
