package main

import (
	"github.com/DrSkyle/costscope/cmd/costscope/commands"
)

func main() {
	commands.Execute()
}
