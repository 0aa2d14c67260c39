//go:build nosdl

package main

import "errors"

// Preview недоступен в сборке без SDL (-tags nosdl).
func Preview(source, result *ImageData) error {
	return errors.New("preview is not available: built with -tags nosdl")
}
