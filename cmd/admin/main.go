package main

import (
	"os"

	"go.uber.org/zap"

	"kindergarten_backend/internals/configs"
	database "kindergarten_backend/internals/databases"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	"kindergarten_backend/internals/logger"
)

func main() {
	configs.LoadEnv()
	_ = logger.InitLogger(&logger.LogConfig{Level: "info", Environment: configs.AppEnv, ServiceName: configs.AppName + "-admin"})
	defer logger.Sync()
	log := logger.GetLogger()

	if err := database.ConnectDB(); err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	cli := commandLine{
		users:   userRepo.NewUserRepository(database.DB),
		migrate: func() error { return database.AutoMigrate(database.DB) },
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			log.Error("admin command failed", zap.Error(err))
		}
		os.Exit(1)
	}
}
