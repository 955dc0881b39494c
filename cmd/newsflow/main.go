package main

import (
	"os"

	"nisee.app/newsflow/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
