package dao

import (
	"context"
	"time"

	"github.com/ondrejklvac/eshop/internal/model"

	"gorm.io/gorm"
)

type UserDao struct {
	db *gorm.DB
}

// NewUserDao 构造函数（依赖注入）
func NewUserDao(db *gorm.DB) *UserDao {
	return &UserDao{db: db}
}

// GetUserByID 根据用户ID获取用户
func (dao *UserDao) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := dao.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 根据邮箱查询用户
func (dao *UserDao) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := dao.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists 检查邮箱是否已注册
func (dao *UserDao) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := dao.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser 创建用户
func (dao *UserDao) CreateUser(ctx context.Context, user *model.User) error {
	return dao.db.WithContext(ctx).Create(user).Error
}

// ListUsers 获取全部用户
func (dao *UserDao) ListUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := dao.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

// UpdateUser 更新用户信息（不包括密码）
func (dao *UserDao) UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) error {
	return dao.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdateUserPassword 更新用户密码
func (dao *UserDao) UpdateUserPassword(ctx context.Context, userID int64, newPasswordHash string) error {
	return dao.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash": newPasswordHash,
		"updated_at":    time.Now(),
	}).Error
}

// SetCredits 直接设置用户积分余额
func (dao *UserDao) SetCredits(ctx context.Context, userID int64, credits int64) error {
	return dao.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("credits", credits).Error
}

// CountUserOrders 统计用户订单数（删除用户前校验）
func (dao *UserDao) CountUserOrders(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := dao.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteUser 删除用户及其购物车
func (dao *UserDao) DeleteUser(ctx context.Context, userID int64) error {
	return dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var carts []model.Cart
		if err := tx.Where("user_id = ?", userID).Find(&carts).Error; err != nil {
			return err
		}
		for _, cart := range carts {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Cart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, userID).Error
	})
}
