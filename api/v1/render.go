package v1

import (
	"net/http"

	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/gin-gonic/gin"
)

// OK 成功信封，data逐键合并进响应体
func OK(c *gin.Context, data gin.H) {
	body := gin.H{
		"code":    e.SUCCESS,
		"message": e.GetMsg(e.SUCCESS),
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail 失败信封，消息取自错误码表
func Fail(c *gin.Context, status, code int) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": e.GetMsg(code),
	})
}

// FailMsg 失败信封，自定义消息
func FailMsg(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": msg,
	})
}
