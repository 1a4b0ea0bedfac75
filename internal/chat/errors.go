package chat

import "errors"

// 业务层通用错误，接口层据此映射到统一的 Resultado 信封。
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrAlreadyExists      = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
