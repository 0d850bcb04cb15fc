package main

import (
	"log"
	"os"

	"github.com/craftshop/core/cmd/api/commands"
)

// @title Crafts API
// @version 1.0
// @description Craft gallery with image uploads

// @license.name MIT

// @BasePath /

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
