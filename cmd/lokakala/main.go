package main

import (
	"os"

	"kalaghar.in/lokakala/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
