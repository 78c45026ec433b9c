package e

// 错误码定义
const (
	SUCCESS        = 0
	ERROR          = 1
	INVALID_PARAMS = 2

	ERROR_NOT_LOGIN = 10001
	ERROR_FORBIDDEN = 10002

	ERROR_USER_EXISTS     = 20001
	ERROR_USER_NOT_EXISTS = 20002
	ERROR_PASSWORD        = 20003
	ERROR_USER_HAS_ORDERS = 20004
	ERROR_SELF_OPERATION  = 20005

	ERROR_PRODUCT_NOT_EXISTS  = 30001
	ERROR_SHIPPING_NOT_EXISTS = 30002

	ERROR_CART_ITEM_NOT_EXISTS = 40001
	ERROR_CART_EMPTY           = 40002

	ERROR_ORDER_NOT_EXISTS    = 50001
	ERROR_ORDER_STATUS        = 50002
	ERROR_CHECKOUT_FAILED     = 50003
)

var MsgFlags = map[int]string{
	SUCCESS:        "成功",
	ERROR:          "失败",
	INVALID_PARAMS: "请求参数错误",

	ERROR_NOT_LOGIN: "请先登录",
	ERROR_FORBIDDEN: "无权访问",

	ERROR_USER_EXISTS:     "用户已存在",
	ERROR_USER_NOT_EXISTS: "用户不存在",
	ERROR_PASSWORD:        "密码错误",
	ERROR_USER_HAS_ORDERS: "用户存在订单，无法删除",
	ERROR_SELF_OPERATION:  "不能对当前登录账号执行该操作",

	ERROR_PRODUCT_NOT_EXISTS:  "商品不存在",
	ERROR_SHIPPING_NOT_EXISTS: "配送方式不存在",

	ERROR_CART_ITEM_NOT_EXISTS: "购物车条目不存在",
	ERROR_CART_EMPTY:           "购物车为空",

	ERROR_ORDER_NOT_EXISTS: "订单不存在",
	ERROR_ORDER_STATUS:     "订单状态不合法",
	ERROR_CHECKOUT_FAILED:  "下单失败",
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}
	return MsgFlags[ERROR]
}
