//go:build mage

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/resusage"
	binPath    = "bin/resusage"
)

// Default target - build the binary
var Default = Build

// Build builds the resusage binary with version metadata.
func Build() error {
	date := time.Now().UTC().Format(time.RFC3339)
	ldflags := fmt.Sprintf("-s -w -X '%[1]s/internal/version.Version=%[2]s' -X '%[1]s/internal/version.CommitHash=%[3]s' -X '%[1]s/internal/version.BuildDate=%[4]s'",
		modulePath, gitVersion(), gitCommit(), date)
	return sh.RunV("go", "build", "-ldflags", ldflags, "-o", binPath, "./cmd/resusage")
}

// Clean removes build artifacts and the sample usage map.
func Clean() error {
	if err := sh.Rm("bin"); err != nil {
		return err
	}
	return sh.Rm("resource_usage_map.json")
}

// Sample runs the keyword helper tests through resusage and shows the result.
func Sample() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "run", "--format", "terminal", "--",
		"go", "test", "-json", "-count=1", "-run", "TestHelpers", "./pkg/keywords")
}

// QA runs format, vet, lint and tests.
func QA() {
	mg.SerialDeps(Lint.Format, Lint.Vet, Lint.Staticcheck, Test.Race, Build)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// Format fails when gofmt would change a file.
func (Lint) Format() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return err
	}
	if out = strings.TrimSpace(out); out != "" {
		return fmt.Errorf("files need gofmt:\n%s", out)
	}
	return nil
}

// Vet runs go vet
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Staticcheck runs staticcheck when it is installed.
func (Lint) Staticcheck() error {
	err := sh.RunV("staticcheck", "./...")
	if isCommandNotFound(err) {
		fmt.Fprintln(os.Stderr, "staticcheck not found (install: go install honnef.co/go/tools/cmd/staticcheck@latest)")
		return nil
	}
	return err
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs tests with race detector
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Coverage runs tests with coverage
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

func isCommandNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || (err != nil && strings.Contains(err.Error(), "executable file not found"))
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return out
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return out
}
