package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
)

type addressEntry struct {
	Words        string `json:"words"`
	NearestPlace string `json:"nearestPlace"`
}

// Mock reverse-geocode service for local development. Canned entries are
// keyed by coordinates rounded to three decimals, roughly a city block.
func main() {
	var (
		port = flag.String("port", "9099", "port to listen on")
		data = flag.String("data", "mock-w3w.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload map[string]addressEntry
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/reverse", func(w http.ResponseWriter, r *http.Request) {
		lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
		if latErr != nil || lngErr != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		key := fmt.Sprintf("%.3f,%.3f", lat, lng)
		entry, ok := payload[key]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entry); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	log.Printf("mock w3w listening on %s (%d entries)", addr, len(payload))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
