package main

import (
	"log"

	"artfolio_backend/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	app.Run()
}
