package session

import (
	"net/http"

	"github.com/ondrejklvac/eshop/config"

	"github.com/gorilla/sessions"
)

// 会话键名
const (
	keyUserID          = "user_id"
	keyCartToken       = "cart_token"
	keyShippingMethod  = "shipping_method"
	keyShippingAddress = "shipping_address"
	keyNote            = "note"
	keyAppliedCredits  = "applied_credits"
)

// Manager 基于Cookie的会话存储
// 登录态和结算过程中的临时选择（配送方式、地址、备注、已申请积分）都放在这里，
// 订单确认之前不落库
type Manager struct {
	store *sessions.CookieStore
	name  string
}

func NewManager(cfg *config.SessionConfig) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: cfg.Name}
}

// Get 获取当前请求的会话，Cookie损坏时返回新会话
func (m *Manager) Get(r *http.Request) *Session {
	s, _ := m.store.Get(r, m.name)
	return &Session{s: s}
}

// Session 单个浏览会话的键值视图
type Session struct {
	s *sessions.Session
}

// Save 写回会话Cookie，必须在响应写出前调用
func (s *Session) Save(r *http.Request, w http.ResponseWriter) error {
	return s.s.Save(r, w)
}

func (s *Session) getInt64(key string) (int64, bool) {
	v, ok := s.s.Values[key].(int64)
	return v, ok
}

func (s *Session) getString(key string) (string, bool) {
	v, ok := s.s.Values[key].(string)
	return v, ok
}

// ========== 登录态 ==========

func (s *Session) UserID() (int64, bool) {
	return s.getInt64(keyUserID)
}

func (s *Session) SetUserID(id int64) {
	s.s.Values[keyUserID] = id
}

// ClearUser 退出登录，保留匿名购物车令牌
func (s *Session) ClearUser() {
	delete(s.s.Values, keyUserID)
	delete(s.s.Values, keyAppliedCredits)
}

// ========== 匿名购物车 ==========

func (s *Session) CartToken() (string, bool) {
	return s.getString(keyCartToken)
}

func (s *Session) SetCartToken(token string) {
	s.s.Values[keyCartToken] = token
}

// ========== 结算选择 ==========

func (s *Session) ShippingMethod() (int64, bool) {
	return s.getInt64(keyShippingMethod)
}

func (s *Session) SetShippingMethod(id int64) {
	s.s.Values[keyShippingMethod] = id
}

func (s *Session) ShippingAddress() (string, bool) {
	return s.getString(keyShippingAddress)
}

func (s *Session) SetShippingAddress(addr string) {
	s.s.Values[keyShippingAddress] = addr
}

func (s *Session) Note() (string, bool) {
	return s.getString(keyNote)
}

func (s *Session) SetNote(note string) {
	s.s.Values[keyNote] = note
}

// AppliedCredits 已申请抵扣的积分，默认0
func (s *Session) AppliedCredits() int64 {
	v, _ := s.getInt64(keyAppliedCredits)
	return v
}

func (s *Session) SetAppliedCredits(credits int64) {
	s.s.Values[keyAppliedCredits] = credits
}

// PopAppliedCredits 下单成功后清除积分申请，配送方式与地址保留给下次下单
func (s *Session) PopAppliedCredits() {
	delete(s.s.Values, keyAppliedCredits)
}
