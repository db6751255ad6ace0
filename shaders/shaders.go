package shaders

import (
	_ "embed"
)

//go:embed plane_vs.wgsl
var PlaneVertexWGSL string

//go:embed plane_fs.wgsl
var PlaneFragmentWGSL string

//go:embed fullscreen_vs.wgsl
var FullscreenVertexWGSL string

//go:embed distortion_fs.wgsl
var DistortionFragmentWGSL string
