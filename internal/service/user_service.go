package service

import (
	"context"
	"errors"

	"github.com/ondrejklvac/eshop/internal/dao"
	"github.com/ondrejklvac/eshop/internal/model"
	"github.com/ondrejklvac/eshop/pkg/utils"

	"gorm.io/gorm"
)

// UserService 账号注册登录与后台用户管理
type UserService struct {
	userDao *dao.UserDao
}

func NewUserService(userDao *dao.UserDao) *UserService {
	return &UserService{
		userDao: userDao,
	}
}

// GetUser 根据ID获取用户
func (s *UserService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.userDao.GetUserByID(ctx, userID)
}

// Register 注册新账号
func (s *UserService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	exists, err := s.userDao.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userDao.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 邮箱+密码登录，成功返回用户
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userDao.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// UpdateProfile 用户自助更新资料
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, email, address string) error {
	updates := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"address":    address,
	}
	return s.userDao.UpdateUser(ctx, userID, updates)
}

// ListUsers 全部用户（后台管理）
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userDao.ListUsers(ctx)
}

// AdminCreateUser 管理员创建用户
func (s *UserService) AdminCreateUser(ctx context.Context, user *model.User, password string) error {
	exists, err := s.userDao.EmailExists(ctx, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if user.Credits < 0 {
		user.Credits = 0
	}
	return s.userDao.CreateUser(ctx, user)
}

// AdminEditUserInput 后台用户编辑表单
type AdminEditUserInput struct {
	FirstName   string
	LastName    string
	Email       string
	Address     string
	IsAdmin     bool
	NewPassword string
}

// AdminEditUser 管理员编辑用户
// 管理员编辑自己时忽略is_admin变更，不能自降权限
func (s *UserService) AdminEditUser(ctx context.Context, actor *model.User, userID int64, input AdminEditUserInput) error {
	target, err := s.userDao.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"first_name": input.FirstName,
		"last_name":  input.LastName,
		"email":      input.Email,
		"address":    input.Address,
	}
	if actor.ID != target.ID {
		updates["is_admin"] = input.IsAdmin
	}
	if err := s.userDao.UpdateUser(ctx, userID, updates); err != nil {
		return err
	}

	if input.NewPassword != "" {
		hash, err := utils.HashPassword(input.NewPassword)
		if err != nil {
			return err
		}
		return s.userDao.UpdateUserPassword(ctx, userID, hash)
	}
	return nil
}

// 积分操作
const (
	CreditsActionAdd      = "add"
	CreditsActionSubtract = "subtract"
	CreditsActionSet      = "set"
)

// AdjustCredits 管理员调整用户积分，余额下限为0
func (s *UserService) AdjustCredits(ctx context.Context, userID int64, action string, amount int64) (int64, error) {
	user, err := s.userDao.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var credits int64
	switch action {
	case CreditsActionAdd:
		credits = user.Credits + amount
	case CreditsActionSubtract:
		credits = user.Credits - amount
	case CreditsActionSet:
		credits = amount
	default:
		return 0, ErrInvalidAction
	}
	if credits < 0 {
		credits = 0
	}

	if err := s.userDao.SetCredits(ctx, userID, credits); err != nil {
		return 0, err
	}
	return credits, nil
}

// AdminDeleteUser 管理员删除用户
// 不能删除自己；存在订单的用户禁止删除
func (s *UserService) AdminDeleteUser(ctx context.Context, actor *model.User, userID int64) error {
	if actor.ID == userID {
		return ErrSelfOperation
	}
	if _, err := s.userDao.GetUserByID(ctx, userID); err != nil {
		return err
	}

	count, err := s.userDao.CountUserOrders(ctx, userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUserHasOrders
	}
	return s.userDao.DeleteUser(ctx, userID)
}

// EnsureAdmin 初始化管理员账号，已存在则只提升权限（cmd/createadmin）
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userDao.GetUserByEmail(ctx, email)
	if err == nil {
		if !user.IsAdmin {
			if err := s.userDao.UpdateUser(ctx, user.ID, map[string]interface{}{"is_admin": true}); err != nil {
				return nil, err
			}
			user.IsAdmin = true
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &model.User{
		FirstName:    "Admin",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.userDao.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
