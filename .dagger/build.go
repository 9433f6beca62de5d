package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dagger/innerai/internal/dagger"
)

// Build and return directory of go binaries
//
// The sqlite journal needs CGO, so each architecture is built in a container
// of that platform rather than cross-compiled.
func (m *InnerAI) Build(
	ctx context.Context,

	// Linker flags for go build
	// +optional
	// +default="-s -w"
	ldflags string,
) *dagger.Directory {
	goarches := []string{"amd64", "arm64"}

	// create empty directory to put build artifacts
	outputs := dag.Directory()

	for _, goarch := range goarches {
		path := fmt.Sprintf("linux/%s/", goarch)

		build := m.goContainer(dagger.Platform("linux/"+goarch)).
			WithExec([]string{"go", "build", "-ldflags", ldflags, "-o", path, "./cli/innerai"})

		outputs = outputs.WithDirectory(path, build.Directory(path))
	}

	return outputs
}

// BuildRelease compiles versioned release binaries with embedded version info
func (m *InnerAI) BuildRelease(
	ctx context.Context,

	// Version string of build
	version string,

	// Git commit SHA of build
	commit string,
) *dagger.Directory {
	buildtime := time.Now()

	ldflags := []string{
		"-s",
		"-w",
		fmt.Sprintf("-X 'github.com/papercomputeco/innerai/pkg/utils.Version=%s'", version),
		fmt.Sprintf("-X 'github.com/papercomputeco/innerai/pkg/utils.Sha=%s'", commit),
		fmt.Sprintf("-X 'github.com/papercomputeco/innerai/pkg/utils.Buildtime=%s'", buildtime),
	}

	return m.Build(ctx, strings.Join(ldflags, " "))
}
