package main

import (
	"github.com/turbolytics/scribe/internal/cmd"
)

func main() {
	cmd.Execute()
}
