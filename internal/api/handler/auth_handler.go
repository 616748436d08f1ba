package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitapat/internal/dto"
	"pitapat/internal/service"
	"pitapat/pkg/constants"
	"pitapat/pkg/responses"
	"pitapat/pkg/utils"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login 登录
// @Summary GitHub 登录
// @Description 使用 OAuth 授权码登录, access token 通过 Authorization 响应头返回
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ErrorWithDetail(c, http.StatusBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	c.Header(constants.HeaderAuthorization, constants.HeaderBearerPrefix+resp.AccessToken)
	responses.Success(c, resp)
}
