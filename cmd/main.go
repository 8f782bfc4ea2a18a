package main

import (
	"os"

	"github.com/redhat-data-and-ai/polly/internal/cli"
	"github.com/redhat-data-and-ai/polly/internal/logging"
)

func main() {
	defer func() {
		if l := logging.GetLogger(); l != nil {
			l.Sync()
		}
	}()

	if err := cli.Execute(); err != nil {
		logging.Error("polly exited with error: %v", err)
		os.Exit(1)
	}
}
