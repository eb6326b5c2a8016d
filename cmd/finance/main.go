package main

import "github.com/rustyeddy/finance/internal/cli"

func main() {
	cli.Execute()
}
