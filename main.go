package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"yad2-pets-scraper/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands.ExecuteContext(ctx)
}
