//go:build cli
// +build cli

package main

import (
	_ "cafe.GO/custom"

	"cafe.GO/cmd"
	"cafe.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
