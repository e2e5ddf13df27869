// Package main runs a datastore session over stdin and stdout.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	datastorecmd "github.com/louisbranch/datastore/internal/cmd/datastore"
	"github.com/louisbranch/datastore/internal/platform/config"
)

func main() {
	cfg, err := datastorecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(config.ExitUsage, "parse flags: %v", err)
	}
	log.SetPrefix("[DATASTORE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := datastorecmd.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		stop()
		config.Exitf("datastore: %v", err)
	}
}
