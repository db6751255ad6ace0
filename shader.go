package sketch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gekko3d/sketch/shaders"
)

type ShaderStage string

const (
	StageVertex   ShaderStage = "vertex"
	StageFragment ShaderStage = "fragment"
)

// Entry points every program must define.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Uniform names written by the frame loop.
const (
	UniformTime        = "time"
	UniformHover       = "hover"
	UniformHoverUV     = "hoverUV"
	UniformScrollSpeed = "scrollSpeed"
	UniformImage       = "image"
	UniformStrength    = "strength"
)

var errMissingSource = errors.New("empty source")

// ShaderError reports a failure in one stage of a program.
type ShaderError struct {
	Program string
	Stage   ShaderStage
	Err     error
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("shader %q: %s stage: %v", e.Program, e.Stage, e.Err)
}

func (e *ShaderError) Unwrap() error {
	return e.Err
}

// ShaderProgram is a vertex/fragment source pair. Sources are opaque WGSL.
type ShaderProgram struct {
	Name     string
	Vertex   string
	Fragment string
}

// Validate checks that both stages are present and declare their entry point.
func (p ShaderProgram) Validate() error {
	if err := checkStage(p.Vertex, "@vertex", VertexEntryPoint); err != nil {
		return &ShaderError{Program: p.Name, Stage: StageVertex, Err: err}
	}
	if err := checkStage(p.Fragment, "@fragment", FragmentEntryPoint); err != nil {
		return &ShaderError{Program: p.Name, Stage: StageFragment, Err: err}
	}
	return nil
}

func checkStage(src, attr, entry string) error {
	if strings.TrimSpace(src) == "" {
		return errMissingSource
	}
	if !strings.Contains(src, attr) {
		return fmt.Errorf("missing %s attribute", attr)
	}
	if !strings.Contains(src, "fn "+entry) {
		return fmt.Errorf("missing entry point %s", entry)
	}
	return nil
}

func DefaultPlaneProgram() ShaderProgram {
	return ShaderProgram{
		Name:     "plane",
		Vertex:   shaders.PlaneVertexWGSL,
		Fragment: shaders.PlaneFragmentWGSL,
	}
}

func DefaultDistortionProgram() ShaderProgram {
	return ShaderProgram{
		Name:     "distortion",
		Vertex:   shaders.FullscreenVertexWGSL,
		Fragment: shaders.DistortionFragmentWGSL,
	}
}
