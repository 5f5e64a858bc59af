package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// version is set at build time via -ldflags.
var version = "dev"

// @title OCR Web
// @version 1.0
// @description Upload a document image and view the raw OCR output.
// @BasePath /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
