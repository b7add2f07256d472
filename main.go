package main

import (
	"os"

	"github.com/c14220110/findmyclinic-backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
