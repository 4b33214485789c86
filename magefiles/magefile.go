//go:build mage

// Package main provides build targets for the lineage project using Mage.
//
// Usage:
//
//	mage build          Compile lineage binary to bin/
//	mage test:all       Run all tests
//	mage test:cover     Run tests with a coverage profile in bin/
//	mage smoke          Build, then drive the binary through a short session
//	mage lint           Run golangci-lint
//	mage clean          Remove build artifacts
//	mage install        Install lineage to GOPATH/bin
//	mage stats          Print Go LOC for production and test code
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "lineage"
	binaryDir  = "bin"
	cmdDir     = "./cmd/lineage"
)

// Test groups test targets.
type Test mg.Namespace

// Build compiles the lineage binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// All runs every package's tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Cover runs the tests and writes bin/coverage.out.
func (Test) Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Smoke builds the binary and runs init, add, link and evos against a
// throwaway data directory for each backend.
func Smoke() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)

	for _, backend := range []string{"csv", "sqlite"} {
		dir, err := os.MkdirTemp("", "lineage-smoke-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		global := []string{
			"--config-dir", filepath.Join(dir, "config"),
			"--data-dir", filepath.Join(dir, "data"),
			"--backend", backend,
		}
		steps := [][]string{
			{"init", "--capacity", "151"},
			{"add", "1", "Bulbasaur", "--primary", "grass", "--secondary", "poison"},
			{"add", "2", "Ivysaur", "--primary", "grass", "--secondary", "poison"},
			{"link", "1", "2"},
			{"evos", "2"},
			{"verify"},
		}
		fmt.Printf("== %s\n", backend)
		for _, step := range steps {
			if err := sh.RunV(bin, append(step, global...)...); err != nil {
				return fmt.Errorf("%s %s: %w", backend, strings.Join(step, " "), err)
			}
		}
	}
	return nil
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Stats prints Go lines of code for production and test files.
func Stats() error {
	var prodLines, testLines int

	err := filepath.Walk(".", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch path {
			case "vendor", ".git", binaryDir, "magefiles", "_examples":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		count, countErr := countLines(path)
		if countErr != nil {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			testLines += count
		} else {
			prodLines += count
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Lines of code (Go, total):      %d\n", prodLines+testLines)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
