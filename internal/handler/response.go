package handler

import (
	"errors"
	"io"
	"net/http"

	"chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData 统一响应结构体
type ResponseData struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Message any  `json:"message"`        // 提示信息，参数校验失败时为字段到错误的映射
	Data    any  `json:"data,omitempty"` // 数据
}

// HandleSuccess 返回 200 成功响应
func HandleSuccess(c *gin.Context, data any) {
	respondOK(c, http.StatusOK, "success", data)
}

// HandleCreated 返回 201 成功响应
func HandleCreated(c *gin.Context, data any) {
	respondOK(c, http.StatusCreated, "created", data)
}

func respondOK(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, ResponseData{
		Success: true,
		Code:    errorx.CodeSuccess,
		Message: msg,
		Data:    data,
	})
}

// HandleError 通用错误处理方法
// 业务错误按错误码映射 HTTP 状态，其他错误记录日志并返回服务繁忙
//
//	if err := svc.DoSomething(ctx); err != nil {
//	    HandleError(c, err)
//	    return
//	}
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		c.AbortWithStatusJSON(errorx.HTTPStatus(codeErr.Code), ResponseData{
			Code:    codeErr.Code,
			Message: codeErr.Msg,
		})
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ResponseData{
		Code:    errorx.ErrServerBusy.Code,
		Message: errorx.ErrServerBusy.Msg,
	})
}

// bindOptionalJSON 绑定可为空的 JSON 请求体，空体保持零值
// 返回 false 时已写出参数错误响应
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		HandleParamError(c, err)
		return false
	}
	return true
}

// HandleParamError 处理参数绑定错误，validator 错误翻译后按字段返回
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ResponseData{
			Code:    errorx.ErrInvalidParam.Code,
			Message: RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	// 非 validator 错误（如 JSON 格式错误）
	zap.L().Debug("param bind error", zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, ResponseData{
		Code:    errorx.ErrInvalidParam.Code,
		Message: errorx.ErrInvalidParam.Msg,
	})
}

// currentUserID JWT 中间件写入的当前用户 id
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
