// falad: development tutor server.
// Serves the backend REST + websocket surface with canned speech and
// generation so the client can be exercised without a model runtime.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/falalabs/go-fala/internal/config"
	"github.com/falalabs/go-fala/internal/log"
	"github.com/falalabs/go-fala/pkg/web"
)

var (
	listen   = flag.String("listen", config.ListenAddr(), "listen address")
	logLevel = flag.String("log-level", config.LogLevel(), "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	log.Init(*logLevel)

	srv := web.NewServer(log.L())

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	if err := srv.Listen(*listen); err != nil {
		fmt.Fprintf(os.Stderr, "falad: %v\n", err)
		os.Exit(1)
	}
}
