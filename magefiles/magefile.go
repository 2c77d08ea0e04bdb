//go:build mage

// Package main provides build targets for pipefilter using Mage.
//
// Usage:
//
//	mage build    Compile the pipefilter binary to bin/
//	mage test     Run all tests
//	mage lint     Run golangci-lint
//	mage clean    Remove build artifacts
//	mage install  Install pipefilter to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "pipefilter"
	binaryDir  = "bin"
	cmdDir     = "./cmd/pipefilter"
	versionVar = "github.com/tkingovr/pipefilter/cmd/pipefilter/cli.version"
)

func ldflags() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		v = "dev"
	}
	return fmt.Sprintf("-X %s=%s", versionVar, v)
}

// Build compiles the pipefilter binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install installs pipefilter to GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "-ldflags", ldflags(), cmdDir)
}
