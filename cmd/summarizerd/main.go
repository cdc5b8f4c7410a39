// Command summarizerd is a thin demonstration binary wiring the
// summarizer-core library into a runnable daemon plus a small jobs CLI,
// in the way cmd/cli wires up the teacher's library packages.
package main

import (
	"context"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	executeContext(ctx)
}
