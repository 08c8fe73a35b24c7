package main

import (
	"os"

	"podd/internal/podctl"
)

func main() {
	os.Exit(podctl.Main())
}
