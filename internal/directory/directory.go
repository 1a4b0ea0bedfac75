package directory

import (
	"context"
	"errors"
)

// 目录层通用错误，调用方通过 errors.Is 判断并映射到业务结果。
var (
	ErrNotFound       = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("bad credentials")
)

// User 是目录对外暴露的用户视图，密码（及其哈希）永远不离开目录。
type User struct {
	ID    string
	Email string
	Token string
}

// UserDirectory 是核心触达的唯一持久化边界。
// 密码的存储策略（明文还是哈希）由具体实现决定。
type UserDirectory interface {
	// FindByEmail 按邮箱精确查找用户，未命中返回 ErrNotFound。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByToken 按令牌精确查找用户，空令牌或未命中返回 ErrNotFound。
	FindByToken(ctx context.Context, token string) (*User, error)
	// Create 创建新用户，邮箱重复返回 ErrEmailTaken。
	Create(ctx context.Context, email, password string) (*User, error)
	// SetToken 校验邮箱+密码后设置令牌，空字符串表示清除。
	// 凭据不匹配返回 ErrBadCredentials。
	SetToken(ctx context.Context, email, password, token string) error
}
