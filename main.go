package main

import (
	"log"

	"github.com/spigell/optiplan-ai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
