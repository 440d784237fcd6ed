package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"medimart/m/internal/api"
	"medimart/m/internal/config"
	"medimart/m/internal/database"
	"medimart/m/internal/ledger"
	"medimart/m/internal/migrations"
	"medimart/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.EnsureDefaultUsers(db)
	seed.LoadProducts(db, cfg.SeedFile)

	led := ledger.New(db, cfg.PrimaryCity)
	handler := api.New(db, cfg.Secret, led)

	log.Printf("MediMart POS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
