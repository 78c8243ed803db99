package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"bankshot/internal/back"
	"bankshot/internal/config"
	"bankshot/internal/web"
)

func serve(conf *config.Config, b *back.Back) error {
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	server, err := web.NewServer(b, conf)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	go server.Serve(&wg, done)

	sig := <-signaled
	log.Printf("info: received signal %d", sig)

	close(done)
	wg.Wait()
	log.Print("info: shutdown complete")

	return nil
}
