package config

import "neurobik/pkg/confirm"

type Kind string

const (
	KindModel Kind = "model"
	KindImage Kind = "oci"
)

// BuildSpec describes a local image build.
type BuildSpec struct {
	Containerfile string
	// Args are NAME=VALUE pairs, passed in order.
	Args []string
}

// Artifact is one model file or container image to obtain.
type Artifact struct {
	Kind Kind
	// Name identifies the artifact: the model file name or the image reference.
	Name string
	// Repo is the model repository, e.g. unsloth/Qwen3-0.6B-GGUF.
	Repo        string
	Destination string
	// Confirmation is the only authority on whether the artifact was obtained.
	Confirmation confirm.Marker
	Checksum     string
	URL          string
	Build        *BuildSpec
}

func (a Artifact) Confirmed() bool {
	return a.Confirmation.Exists()
}
