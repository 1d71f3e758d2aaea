package server

import "fmt"

func errNotFound(id string) error {
	return fmt.Errorf("not found: %s", id)
}

func errMissingParam(name string) error {
	return fmt.Errorf("missing required query parameter: %s", name)
}
