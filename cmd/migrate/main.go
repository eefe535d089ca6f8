// migrate applies the embedded schema migrations; go run ./cmd/migrate -direction up
package main

import (
	"flag"
	"fmt"
	"os"

	"kaizen-online/internal/config"
	"kaizen-online/internal/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := database.Migrate(cfg.DB.Source, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Println("migrate:", *direction, "done")
}
