package main

import (
	"github.com/repolens/backend/internal/server"
	"github.com/repolens/backend/internal/util"
	"github.com/repolens/backend/pkg/logger"
	"github.com/repolens/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
