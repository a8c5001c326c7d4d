package main

import "github.com/dimaq12/minesweeper/cmd"

func main() {
	cmd.Execute()
}
