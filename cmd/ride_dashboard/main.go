package main

import (
	"log"
	"strings"

	"github.com/lucasjlepore/ride-segments/dashboard"
)

func main() {
	cfg, err := dashboard.LoadConfig()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	store := dashboard.NewRideStore(cfg.RideCacheSize)
	r := dashboard.NewRouter(cfg, store)

	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	log.Printf("Ride dashboard listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
