package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		zap.S().Errorw("legal-aid-api exited", "error", err)
		os.Exit(1)
	}
}
