package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"shopguard/feedback"
	"shopguard/trust"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("FEEDBACK_DB")
	if dbPath == "" {
		dbPath = "data/feedback.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatal(err)
	}
	store, err := feedback.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	engine, err := trust.NewEngine(trust.ConfigFromEnv(), store)
	if err != nil {
		log.Fatal(err)
	}

	r := chi.NewRouter()
	r.Mount("/api", trust.NewHandler(engine, store).Routes())

	log.Printf("shopguard listening on :%s", port)
	log.Println("   POST /api/analyze   - full trust analysis")
	log.Println("   POST /api/feedback  - record delivery outcome")
	log.Println("   GET  /api/compare   - engine vs baseline")
	log.Println("   GET  /api/history   - past verdicts for a domain")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
