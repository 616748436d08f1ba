package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pitapat/internal/dto"
	"pitapat/internal/service"
	"pitapat/pkg/constants"
	"pitapat/pkg/responses"
	"pitapat/pkg/utils"
)

// WebhookHandler 外部构建/发布系统的回调
type WebhookHandler struct {
	buildService  service.BuildService
	deployService service.DeployService
	logger        *zap.Logger
}

func NewWebhookHandler(buildService service.BuildService, deployService service.DeployService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		buildService:  buildService,
		deployService: deployService,
		logger:        logger,
	}
}

// BuildEvent 构建结果回调
// @Summary 构建工作流回调, 始终返回 200
// @Tags 回调
// @Accept json
// @Produce json
// @Param X-Callback-Token header string false "回调令牌"
// @Param request body dto.BuildEventRequest true "构建结果"
// @Success 200 {object} responses.MessageResponse
// @Router /project/build/event [post]
func (h *WebhookHandler) BuildEvent(c *gin.Context) {
	log := h.logger.With(zap.String("handler", "webhook.BuildEvent"))

	var req dto.BuildEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("构建回调参数错误", zap.String("detail", utils.FormatValidationError(err)))
		responses.OK(c)
		return
	}

	callbackToken := c.GetHeader(constants.HeaderCallbackToken)
	if err := h.buildService.OnBuildEvent(c.Request.Context(), &req, callbackToken); err != nil {
		log.Error("处理构建回调失败",
			zap.Int64("project_id", req.ProjectID),
			zap.String("status", req.Status),
			zap.Error(err))
	}
	responses.OK(c)
}

// DeployEvent 发布状态回调
// @Summary 发布健康状态回调
// @Tags 回调
// @Accept json
// @Produce json
// @Param request body dto.DeployEventRequest true "发布状态"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /project/deploy/event [post]
func (h *WebhookHandler) DeployEvent(c *gin.Context) {
	var req dto.DeployEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if err := h.deployService.OnDeployEvent(c.Request.Context(), &req); err != nil {
		h.logger.Error("处理发布回调失败",
			zap.String("handler", "webhook.DeployEvent"),
			zap.Int64("build_id", req.BuildID),
			zap.Error(err))
		responses.Error(c, err)
		return
	}
	responses.OK(c)
}
