package main

import (
	"flag"
	"log"
	"os"

	"github.com/lindskogen/progressive-pathtracer/pkg/config"
	"github.com/lindskogen/progressive-pathtracer/web/server"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "Port to serve on")
	flag.Parse()

	webServer := server.NewServer(*port)

	log.Printf("Progressive Path Tracer Web Server")
	log.Printf("Stream a render from http://localhost:%d/api/render?scene=%s", *port, cfg.Scene)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
