package middleware

import (
	"errors"
	"net/http"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/session"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 上下文键
const (
	CtxSession = "session"
	CtxUser    = "user"
)

// SessionMiddleware 加载Cookie会话并解析当前登录用户
// 未登录请求照常放行，会话对象始终可用
func SessionMiddleware(manager *session.Manager, userDao *dao.UserDao) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := manager.Get(c.Request)
		c.Set(CtxSession, sess)

		if userID, ok := sess.UserID(); ok {
			user, err := userDao.GetUserByID(c.Request.Context(), userID)
			if err == nil {
				c.Set(CtxUser, user)
			} else if errors.Is(err, gorm.ErrRecordNotFound) {
				// 账号已被删除，清掉失效的登录态
				sess.ClearUser()
				_ = sess.Save(c.Request, c.Writer)
			}
		}

		c.Next()
	}
}

// LoginRequired 登录保护中间件
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(CtxUser); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    e.ERROR_NOT_LOGIN,
				"message": e.GetMsg(e.ERROR_NOT_LOGIN),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 管理员保护中间件，置于LoginRequired之后
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    e.ERROR_FORBIDDEN,
				"message": e.GetMsg(e.ERROR_FORBIDDEN),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser 取出当前登录用户，未登录返回nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// CurrentSession 取出当前请求的会话
func CurrentSession(c *gin.Context) *session.Session {
	v, _ := c.Get(CtxSession)
	sess, _ := v.(*session.Session)
	return sess
}
