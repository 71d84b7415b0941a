// Package service implements the use cases behind the HTTP API: the
// contacts CRUD, the user account lifecycle and the internal statistics.
// Handlers decode the request, call a service and map the returned error.
package service

type structValidator interface {
	Struct(payload any) error
}
