package service

import "errors"

// 业务语义错误，handler层负责翻译为错误码
var (
	ErrForbidden       = errors.New("无权访问该资源")
	ErrCartEmpty       = errors.New("购物车为空")
	ErrInvalidQuantity = errors.New("数量必须为正整数")
	ErrEmailExists     = errors.New("邮箱已注册")
	ErrWrongPassword   = errors.New("密码错误")
	ErrSelfOperation   = errors.New("不能对当前登录账号执行该操作")
	ErrUserHasOrders   = errors.New("用户存在订单，禁止删除")
	ErrInvalidAction   = errors.New("未知的积分操作")
)
