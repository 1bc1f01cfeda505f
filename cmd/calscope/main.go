package main

import "calscope/internal/cli"

func main() {
	cli.Execute()
}
