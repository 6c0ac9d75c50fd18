package main

import (
	"os"

	"github.com/nutrient-dws/client-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:]))
}
