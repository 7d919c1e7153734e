//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "cardfactory"

var Default = Build

// Build compiles the cardfactory binary
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", binary, "./cmd/cardfactory")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/cardfactory")
}

// Clean removes build output
func Clean() error {
	for _, path := range []string{binary, filepath.Join("dist", binary)} {
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}
	return nil
}
