package main

import (
	"os"

	"github.com/declic87/declic-entrepreneurs-saas-sub003/cmd/portalctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
