package main

import "postify/internal/cmd"

func main() {
	cmd.Run()
}
