package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ondrejklvac/eshop/api/middleware"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/internal/service"
	"github.com/ondrejklvac/eshop/pkg/e"
	"github.com/ondrejklvac/eshop/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler 后台用户管理
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// AdminListUsers 全部用户
func (h *UserHandler) AdminListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		logger.Error("用户列表查询失败", "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, gin.H{"users": users})
}

// AdminCreateUser 创建用户
func (h *UserHandler) AdminCreateUser(c *gin.Context) {
	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	if firstName == "" || lastName == "" || email == "" || len(password) < 6 {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	var credits int64
	if v := c.PostForm("credits"); v != "" {
		var err error
		credits, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
	}
	_, isAdmin := c.GetPostForm("is_admin")

	user := &model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Address:   c.PostForm("address"),
		Credits:   credits,
		IsAdmin:   isAdmin,
	}
	if err := h.userService.AdminCreateUser(c.Request.Context(), user, password); err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			Fail(c, http.StatusBadRequest, e.ERROR_USER_EXISTS)
			return
		}
		logger.Error("用户创建失败", "email", email, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"user_id": user.ID})
}

// AdminEditUser 编辑用户，编辑自己时忽略is_admin变更
func (h *UserHandler) AdminEditUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	_, isAdmin := c.GetPostForm("is_admin")
	input := service.AdminEditUserInput{
		FirstName:   c.PostForm("first_name"),
		LastName:    c.PostForm("last_name"),
		Email:       c.PostForm("email"),
		Address:     c.PostForm("address"),
		IsAdmin:     isAdmin,
		NewPassword: c.PostForm("new_password"),
	}

	actor := middleware.CurrentUser(c)
	if err := h.userService.AdminEditUser(c.Request.Context(), actor, userID, input); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_USER_NOT_EXISTS)
			return
		}
		logger.Error("用户编辑失败", "user_id", userID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}
	OK(c, nil)
}

// AdminUpdateCredits 调整用户积分：add/subtract/set，余额下限0
func (h *UserHandler) AdminUpdateCredits(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	amount, err := strconv.ParseInt(c.DefaultPostForm("amount", "0"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	credits, err := h.userService.AdjustCredits(c.Request.Context(), userID, c.PostForm("action"), amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAction) {
			Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Fail(c, http.StatusNotFound, e.ERROR_USER_NOT_EXISTS)
			return
		}
		logger.Error("积分调整失败", "user_id", userID, "err", err)
		Fail(c, http.StatusInternalServerError, e.ERROR)
		return
	}

	OK(c, gin.H{"credits": credits})
}

// AdminDeleteUser 删除用户，不能删除自己，有订单的用户禁止删除
func (h *UserHandler) AdminDeleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Fail(c, http.StatusBadRequest, e.INVALID_PARAMS)
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.userService.AdminDeleteUser(c.Request.Context(), actor, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfOperation):
			Fail(c, http.StatusBadRequest, e.ERROR_SELF_OPERATION)
		case errors.Is(err, service.ErrUserHasOrders):
			Fail(c, http.StatusBadRequest, e.ERROR_USER_HAS_ORDERS)
		case errors.Is(err, gorm.ErrRecordNotFound):
			Fail(c, http.StatusNotFound, e.ERROR_USER_NOT_EXISTS)
		default:
			logger.Error("用户删除失败", "user_id", userID, "err", err)
			Fail(c, http.StatusInternalServerError, e.ERROR)
		}
		return
	}
	OK(c, nil)
}

// RegisterAdminRoutes 注册后台用户路由
func (h *UserHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.AdminListUsers)
	rg.POST("/user/new", h.AdminCreateUser)
	rg.POST("/user/:id/edit", h.AdminEditUser)
	rg.POST("/user/:id/credits", h.AdminUpdateCredits)
	rg.POST("/user/:id/delete", h.AdminDeleteUser)
}
