package v1

import (
	"errors"
	"net/http"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

type registerRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required"`
	LastName  string `json:"last_name" form:"last_name" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6"`
}

// Register 注册新账号
func (h *AuthHandler) Register(c *gin.Context) {
	if middleware.CurrentUser(c) != nil {
		Fail(c, http.StatusBadRequest, e.ERROR)
		return
	}

	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			Fail(c, http.StatusBadRequest, e.ERROR_USER_EXISTS)
			return
		}
		logger.Error("注册失败", "email", req.Email, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"user_id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login 登录并写入会话
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_USER_NOT_EXISTS)
			return
		}
		if errors.Is(err, service.ErrWrongPassword) {
			Fail(c, http.StatusUnauthorized, e.ERROR_PASSWORD)
			return
		}
		logger.Error("登录失败", "email", req.Email, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	sess := middleware.CurrentSession(c)
	sess.SetUserID(user.ID)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.Error("会话写入失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"user": user})
}

// Logout 退出登录
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.ClearUser()
	if err := sess.Save(c.Request, c.Writer); err != nil {
		logger.Error("会话写入失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// Profile 当前用户资料
func (h *AuthHandler) Profile(c *gin.Context) {
	OK(c, gin.H{"user": middleware.CurrentUser(c)})
}

type profileRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required"`
	LastName  string `json:"last_name" form:"last_name" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Address   string `json:"address" form:"address"`
}

// UpdateProfile 用户自助更新资料
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBind(&req); err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.userService.UpdateProfile(c.Request.Context(), user.ID, req.FirstName, req.LastName, req.Email, req.Address); err != nil {
		logger.Error("资料更新失败", "user_id", user.ID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// RegisterRoutes 注册认证相关路由
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, protected *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	protected.GET("/profile", h.Profile)
	protected.POST("/profile", h.UpdateProfile)
}
