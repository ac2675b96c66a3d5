//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/target"
)

type Build mg.Namespace

const shaderDir = "shaders"

// Compiles every GLSL stage under shaders/ to SPIR-V next to its source.
// Up to date outputs are skipped.
func (Build) Shaders() error {
	sources, err := shaderSources(shaderDir)
	if err != nil {
		return err
	}
	for _, src := range sources {
		out := src + ".spv"
		changed, err := target.Path(out, src)
		if err != nil {
			return err
		}
		if !changed {
			continue
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

func shaderSources(dir string) ([]string, error) {
	var sources []string
	err := filepath.Walk(dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return nil
			}
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".vert", ".frag", ".geom", ".comp", ".tesc", ".tese":
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shaders in %s: %w", dir, err)
	}
	return sources, nil
}
