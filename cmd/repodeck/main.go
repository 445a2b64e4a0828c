// Package main is the entry point for the repodeck aggregation engine.
package main

import (
	"os"

	"github.com/jmalmgren/repodeck/cmd/repodeck/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
