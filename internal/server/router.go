package server

import (
	"net/http"
	"time"

	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/chat"
	"github.com/MarcVCE/TrabajoOpcional/internal/config"
	"github.com/MarcVCE/TrabajoOpcional/internal/graph"
	"github.com/MarcVCE/TrabajoOpcional/internal/metrics"
	"github.com/MarcVCE/TrabajoOpcional/internal/mw"
	"github.com/MarcVCE/TrabajoOpcional/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// SetupRouter 统一初始化 Gin 中间件、GraphQL 端点以及订阅用的 WebSocket 端点。
func SetupRouter(cfg config.Config, svc *chat.Service, gate *auth.Gate) (*gin.Engine, error) {
	schema, err := graph.New(svc)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	// 控制单个 IP+路由的速率，避免接口被刷爆。
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gqlHandler := handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: cfg.Env == "dev",
	})
	gql := gin.WrapH(gqlHandler)

	// 身份从 token 头解析进请求 context，具体操作自行拒绝匿名。
	r.POST("/graphql", auth.Middleware(gate), gql)
	r.GET("/graphql", auth.Middleware(gate), gql)

	r.GET("/ws", ws.Serve(svc, gate))

	return r, nil
}
