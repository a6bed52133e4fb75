package main

import (
	"ggarquitectos-site/internal/cli"
)

func main() {
	cli.Execute()
}
