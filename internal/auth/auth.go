package auth

import (
	"context"
	"errors"

	"github.com/MarcVCE/TrabajoOpcional/internal/directory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Identity 是一次请求解析出的已认证用户；nil 表示匿名。
type Identity struct {
	ID    string
	Email string
}

// Gate 将不透明令牌解析为身份，每个写操作在入口处过这道门。
type Gate struct {
	dir directory.UserDirectory
}

func NewGate(dir directory.UserDirectory) *Gate {
	return &Gate{dir: dir}
}

// Resolve 按令牌精确匹配目录中的用户。令牌缺失或未命中都是正常的匿名结果；
// 目录基础设施故障只记录日志并降级为匿名，不让请求失败。
func (g *Gate) Resolve(ctx context.Context, token string) *Identity {
	if token == "" {
		return nil
	}
	u, err := g.dir.FindByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			log.Warn().Err(err).Msg("auth: token lookup failed")
		}
		return nil
	}
	return &Identity{ID: u.ID, Email: u.Email}
}

// NewToken 生成登录时签发的不透明令牌。
func NewToken() string {
	return uuid.NewString()
}

type ctxKey struct{}

// WithIdentity 将身份放入 context，供下游操作读取。
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom 取出请求身份，匿名时返回 nil。
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}

// Middleware 从 token 请求头（或查询参数）解析身份并注入请求 context。
// 匿名不是连接级错误，具体操作自行拒绝。
func Middleware(g *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("token")
		if token == "" {
			token = c.Query("token")
		}
		id := g.Resolve(c.Request.Context(), token)
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
