package main

import "os"

func main() {
	defer cleanup()

	os.Exit(1) // want "avoid using os.Exit in main.main"
}

func cleanup() {}
