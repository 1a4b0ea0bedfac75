package main

import (
	"github.com/MarcVCE/TrabajoOpcional/internal/auth"
	"github.com/MarcVCE/TrabajoOpcional/internal/bus"
	"github.com/MarcVCE/TrabajoOpcional/internal/chat"
	"github.com/MarcVCE/TrabajoOpcional/internal/config"
	"github.com/MarcVCE/TrabajoOpcional/internal/db"
	"github.com/MarcVCE/TrabajoOpcional/internal/directory"
	clog "github.com/MarcVCE/TrabajoOpcional/internal/log"
	"github.com/MarcVCE/TrabajoOpcional/internal/registry"
	"github.com/MarcVCE/TrabajoOpcional/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	// main 函数负责加载配置、初始化日志、连接用户目录并启动 Gin 服务。
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validate")
	}

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	dir := directory.NewGorm(gdb)

	rooms := registry.NewRegistry()
	seedRooms(rooms)

	b := bus.New()
	svc := chat.NewService(dir, rooms, b)
	gate := auth.NewGate(dir)

	r, err := server.SetupRouter(cfg, svc, gate)
	if err != nil {
		log.Fatal().Err(err).Msg("build schema")
	}
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}

// seedRooms 重建参考系统启动时的两个初始房间。
func seedRooms(rooms *registry.Registry) {
	rooms.Ensure("Sala secreta", "")
	rooms.Ensure("Sala principal", "")
	_ = rooms.AppendMessage("Sala principal", "mensaje 1")
	_ = rooms.AppendMessage("Sala principal", "mensaje 2")
}
