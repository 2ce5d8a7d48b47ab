//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed binary into bin/.
func (Build) Engine() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/lumen", "."), withStream())
	return err
}

// Runs go mod tidy and go vet.
func (Build) Tidy() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}
