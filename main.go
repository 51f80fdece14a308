package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"oticapos/m/internal/api"
	"oticapos/m/internal/config"
	"oticapos/m/internal/database"
	"oticapos/m/internal/migrations"
	"oticapos/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabasePath)
	defer db.Close()

	migrations.Run(db)
	seed.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword)

	handler := api.New(db, cfg.Secret)

	log.Printf("OticaPOS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
