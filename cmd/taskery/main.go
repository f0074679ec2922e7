package main

import "github.com/Marki500/taskery-v2/internal/cli"

func main() {
	cli.Execute()
}
