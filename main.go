package main

import "github.com/p8tools/p8lua/cmd"

var version = "v0.1.0"

func main() {
	cmd.Execute(version)
}
