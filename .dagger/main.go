// InnerAI CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/innerai/internal/dagger"
)

// InnerAI is the main module for the InnerAI CI/CD pipeline
type InnerAI struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new InnerAI CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", ".innerai", "build", "tmp"]
	source *dagger.Directory,
) *InnerAI {
	return &InnerAI{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with gcc,
// libsqlite3-dev, CGO enabled, and the project source mounted.
//
// It is the shared foundation for tests, builds, and linting. An empty
// platform uses the engine's native platform.
func (m *InnerAI) goContainer(platform dagger.Platform) *dagger.Container {
	return dag.Container(dagger.ContainerOpts{Platform: platform}).
		From("golang:1.25-bookworm").
		WithExec([]string{"apt-get", "update"}).
		WithExec([]string{"apt-get", "install", "-y", "gcc", "libsqlite3-dev"}).
		WithEnvVariable("CGO_ENABLED", "1").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build-"+string(platform))).
		WithWorkdir("/src").
		WithDirectory("/src", m.Source)
}

// Test runs the innerai unit tests via "go test"
func (m *InnerAI) Test(ctx context.Context) (string, error) {
	return m.goContainer("").
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
