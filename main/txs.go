package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"libra-txs/cli"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build the global logger and return the level the command line adjusts.
func prepareLogger() zap.AtomicLevel {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := config.Build()

	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to produce a logger: %s\n", err.Error())
		os.Exit(1)
	}
	zap.ReplaceGlobals(logger)

	return config.Level
}

// Main running function
func main() {
	level := prepareLogger()
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)

	err := cli.NewRootCmd(level).ExecuteContext(ctx)
	stop()

	if err != nil {
		zap.L().Error(err.Error())
		os.Exit(1)
	}
}
