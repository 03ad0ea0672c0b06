package main

import (
	"os"

	"github.com/conneroisu/htmltag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
