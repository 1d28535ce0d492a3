package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/zjy-dev/covspec/cmd/covspec/app"
)

func main() {
	if err := app.NewCovspecCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}
