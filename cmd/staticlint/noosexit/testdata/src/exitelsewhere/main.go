package main

import "os"

func main() {
	fail()

	defer func() {
		os.Exit(0)
	}()
}

func fail() {
	os.Exit(2)
}
