package main

import (
	"github.com/tagexplorer/backend/internal/server"
	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		JSON:   util.GetEnvBool("LOG_JSON", false),
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init()
}
