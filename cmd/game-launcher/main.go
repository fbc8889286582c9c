package main

import "github.com/oshokin/game-launcher/cmd/game-launcher/cmd"

func main() {
	cmd.Execute()
}
