package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcdonaldj/tarwrap/internal/cli"
)

// version is set via ldflags at build time: -ldflags "-X main.version=x.y.z"
var version = "dev"

func main() {
	// Interrupts cancel the running tar child instead of orphaning it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cli.New(version)
	c.Ctx = ctx
	c.Run()
}
