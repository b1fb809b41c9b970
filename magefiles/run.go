//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders examples/eeg.shells with examples/geoshell.toml.
func (Run) Example() error {
	mg.Deps(Build.Binary)
	fmt.Println("Rendering EEG head model...")
	_, err := executeCmd("bin/geoshell",
		withArgs("-config", "examples/geoshell.toml", "examples/eeg.shells"),
		withStream())
	return err
}

// Re-renders examples/eeg.shells whenever it changes.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd("bin/geoshell",
		withArgs("-config", "examples/geoshell.toml", "-watch", "examples/eeg.shells"),
		withStream())
	return err
}
