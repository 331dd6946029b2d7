package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"neurobik/pkg/apperr"
	"neurobik/pkg/config"
	execdriver "neurobik/pkg/driver/exec"
)

// DefaultModelTool is the model-repository CLI used for delegated pulls.
const DefaultModelTool = "hf"

// ModelPullArgs builds `hf download <repo> <file> --local-dir <dir>`.
func ModelPullArgs(tool string, a config.Artifact) []string {
	return []string{tool, "download", a.Repo, a.Name, "--local-dir", filepath.Dir(a.Destination)}
}

// BuildImageArgs builds a container build invocation. The build context is
// the directory holding the containerfile; build args keep their order.
func BuildImageArgs(engine, image string, build config.BuildSpec) []string {
	argv := []string{engine, "build", "-t", image}
	for _, arg := range build.Args {
		argv = append(argv, "--build-arg", arg)
	}
	return append(argv, "-f", build.Containerfile, filepath.Dir(build.Containerfile))
}

func PullImageArgs(engine, image string) []string {
	return []string{engine, "pull", image}
}

// ModelPuller obtains models through the model-repository CLI. Files pulled
// this way are not checksum-verified.
type ModelPuller struct {
	Runner execdriver.Runner
	Tool   string
}

func (p *ModelPuller) tool() string {
	if p.Tool == "" {
		return DefaultModelTool
	}
	return p.Tool
}

func (p *ModelPuller) Pull(ctx context.Context, a config.Artifact) error {
	dir := filepath.Dir(a.Destination)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", apperr.ErrFilesystem, dir, err)
	}
	return run(ctx, p.Runner, ModelPullArgs(p.tool(), a))
}

// ImagePuller pulls or builds container images with podman or docker.
type ImagePuller struct {
	Runner execdriver.Runner
	Engine string
}

func (p *ImagePuller) engine() string {
	if p.Engine == "" {
		return config.DefaultOCIProvider
	}
	return p.Engine
}

func (p *ImagePuller) Args(a config.Artifact) []string {
	if a.Build != nil {
		return BuildImageArgs(p.engine(), a.Name, *a.Build)
	}
	return PullImageArgs(p.engine(), a.Name)
}

func (p *ImagePuller) Fetch(ctx context.Context, a config.Artifact) error {
	return run(ctx, p.Runner, p.Args(a))
}

func (p *ImagePuller) Tool(config.Artifact) string {
	return p.engine()
}

func run(ctx context.Context, runner execdriver.Runner, argv []string) error {
	if err := runner.Run(ctx, argv); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrExternalTool, err)
	}
	return nil
}
