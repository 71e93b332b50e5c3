package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/davidxi/scrapinghub-go/cmd/shubctl/cmd"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)

	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
