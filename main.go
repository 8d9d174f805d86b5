package main

import (
	"github.com/merlit/dnswire/app"
	_ "github.com/merlit/dnswire/app/tool"
)

var (
	version = "dev/unknown"
)

func main() {
	rootCmd := app.RootCmd()
	rootCmd.Version = version
	rootCmd.Execute()
}
