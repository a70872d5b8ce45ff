//go:build mage

package main

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Test runs the full test suite.
func Test() error {
	cmd := exec.Command("go", "test", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Lint vets all packages.
func Lint() error {
	cmd := exec.Command("go", "vet", "./...")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Serve builds the binary and starts the HTTP API server.
func Serve() error {
	if err := Build(); err != nil {
		return err
	}
	cmd := exec.Command(filepath.Join(binDir, binName), "serve")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
