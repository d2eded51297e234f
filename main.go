package main

import "github.com/gabrielperales/gabriel.perales.me/cmd"

func main() {
	cmd.Execute()
}
