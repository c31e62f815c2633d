package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		Prefix: "tagexplorer",
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error("Command failed", "err", err)
		stop()
		os.Exit(1)
	}
}
