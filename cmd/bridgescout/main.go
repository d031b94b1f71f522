package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/nvalverde/bridgescout/internal/app"
)

func main() {
	// Optional .env in the working directory; real env vars win.
	_ = godotenv.Load()

	runner := app.NewRunner()
	os.Exit(runner.Run(os.Args[1:]))
}
