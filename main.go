package main

import (
	"os"

	"vidyeet/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
