package main

import (
	"log"

	"github.com/MrSnakeDoc/yodda/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ yodda failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ yodda stopped with an error: %v", err)
	}
}
