package main

import (
	"log"

	"github.com/jengzang/floorheat-backend-go/internal/api"
	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/database"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	if err := database.Migrate(database.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	handlers, stop := api.NewHandlers(cfg, database.GetDB())
	defer stop()

	// 初始化路由
	router := api.SetupRouter(cfg, handlers)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
