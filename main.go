package main

import (
	"github.com/jjtimmons/pudu/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
