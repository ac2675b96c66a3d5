//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/spaghettifunk/vkforge/engine/renderer/manifest"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	mg.Deps(Test.Vet)
	if _, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet. Copies of owned handles are reported by its copylocks check.
func (Test) Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Parses every pipeline manifest under shaders/ and reports the broken ones.
func (Test) Manifests() error {
	var broken []string
	err := filepath.Walk(shaderDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == shaderDir {
				return nil
			}
			return err
		}
		if fi.IsDir() || !strings.HasSuffix(path, manifest.Suffix) {
			return nil
		}
		if _, err := manifest.Load(path); err != nil {
			broken = append(broken, err.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(broken) > 0 {
		return fmt.Errorf("%d broken manifests:\n%s", len(broken), strings.Join(broken, "\n"))
	}
	return nil
}
