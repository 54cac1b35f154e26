package main

import (
	"shoproute/cmd"
)

func main() {
	cmd.Execute()
}
