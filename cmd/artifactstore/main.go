package main

import "github.com/kbukum/artifactstore/cmd/artifactstore/commands"

func main() {
	commands.Execute()
}
