package main

import "github.com/atikulmunna/trainlog/internal/cmd"

func main() {
	cmd.Execute()
}
