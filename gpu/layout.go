package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// quadVertex is one corner of the unit plane. Positions span -0.5..0.5 and
// are scaled by the plane size in the vertex shader.
type quadVertex struct {
	Position [2]float32 `sketch:"layout" location:"0" format:"float2"`
	UV       [2]float32 `sketch:"layout" location:"1" format:"float2"`
}

var quadVertices = []quadVertex{
	{Position: [2]float32{-0.5, -0.5}, UV: [2]float32{0, 0}},
	{Position: [2]float32{0.5, -0.5}, UV: [2]float32{1, 0}},
	{Position: [2]float32{0.5, 0.5}, UV: [2]float32{1, 1}},
	{Position: [2]float32{-0.5, 0.5}, UV: [2]float32{0, 1}},
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

type cameraUniform struct {
	ViewProj mgl32.Mat4
}

// planeUniform mirrors the Plane struct in plane_vs.wgsl and plane_fs.wgsl.
type planeUniform struct {
	Model       mgl32.Mat4
	Size        mgl32.Vec2
	HoverUV     mgl32.Vec2
	Time        float32
	Hover       float32
	ScrollSpeed float32
	Pad         float32
}

type postUniform struct {
	Strength   float32
	Time       float32
	Resolution mgl32.Vec2
}

func parseFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

func createVertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("Vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Tag.Get("sketch") == "layout" {
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				panic(err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         parseFormat(field.Tag.Get("format")),
			})
		}

		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

// toBufferBytes flattens a uniform struct (or slice of them) into
// little-endian bytes in field order.
func toBufferBytes(data any) []byte {
	buf := new(bytes.Buffer)
	writeUniformBytes(reflect.ValueOf(data), buf)
	return buf.Bytes()
}

func writeUniformBytes(field reflect.Value, buf *bytes.Buffer) {
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			elem := field.Index(i)
			if elem.Kind() == reflect.Ptr {
				elem = elem.Elem()
			}
			if elem.Kind() == reflect.Struct || elem.Kind() == reflect.Array {
				writeUniformBytes(elem, buf)
			} else if err := binary.Write(buf, binary.LittleEndian, elem.Interface()); err != nil {
				panic(fmt.Errorf("failed to write slice element: %w", err))
			}
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			writeUniformBytes(field.Field(i), buf)
		}

	case reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			panic(fmt.Errorf("failed to write scalar field: %w", err))
		}

	default:
		panic(fmt.Errorf("unsupported uniform type: %v", field.Type()))
	}
}
