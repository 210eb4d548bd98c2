package main

import (
	"os"

	"quiz-report-service/internal/cli"
)

func main() {
	// cobra already printed the error.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
