package main

import "meetmatch/internal/cli"

func main() {
	cli.Execute()
}
