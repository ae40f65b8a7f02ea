package main

import (
	"os"

	"github.com/yigit/questionbank/internal/pkg/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
