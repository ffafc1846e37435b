// Command stylize-server hosts the built-in stylizer for remote game clients.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/diffused-rays/stylize"
	"github.com/lixenwraith/diffused-rays/stylize/remote"
)

var (
	addrFlag    = flag.String("addr", ":8765", "Listen address")
	latencyFlag = flag.Duration("latency", 300*time.Millisecond, "Simulated inference time per frame")
)

func main() {
	flag.Parse()

	model := stylize.NewToonModel(*latencyFlag)
	handler := remote.NewHandler(stylize.NewResource(model))

	srv := &http.Server{
		Addr:    *addrFlag,
		Handler: routes(handler, model),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Stylizer listening on %s", *addrFlag)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
	log.Printf("Stylizer stopped after %d frames", handler.Served())
}

func routes(handler *remote.Handler, model *stylize.ToonModel) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/stylize", handler)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "loads %d\ncalls %d\nserved %d\n", model.Loads(), model.Calls(), handler.Served())
	})
	return mux
}
