// Command contactsapi serves the contacts and user accounts HTTP API.
//
// Settings come from flags, the environment (a .env file is honored),
// an optional JSON file given with -c or CONFIG, and built-in defaults.
// Migrations for the PostgreSQL backend live next to this file.
package main

import (
	"github.com/patric-chuzhbe/contactsapi/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := theApp.Close(); err != nil {
			panic(err)
		}
	}()

	if err := theApp.Run(); err != nil {
		panic(err)
	}
}
