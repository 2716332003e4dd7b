package uniform

import (
	"github.com/spaghettifunk/albedo/engine/math"
)

// Kind identifies the shader-visible type of a packed value. The
// numeric value doubles as the component count, which drives both
// the packing order and the sizing of the block.
type Kind int

const (
	KindFloat Kind = 1
	KindVec2  Kind = 2
	KindVec3  Kind = 3
	KindVec4  Kind = 4
	// KindMat3 exists only so callers that produce it get rejected:
	// its alignment is not handled, so it is not supported in
	// uniform blocks.
	KindMat3 Kind = 9
	KindMat4 Kind = 16
)

// Components returns how many contiguous floats a value of this kind
// carries, before any alignment padding.
func (k Kind) Components() int {
	return int(k)
}

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVec2:
		return "vec2"
	case KindVec3:
		return "vec3"
	case KindVec4:
		return "vec4"
	case KindMat3:
		return "mat3"
	case KindMat4:
		return "mat4"
	}
	return "unknown"
}

// Input is a single named value to be packed into a uniform block.
// The first Kind.Components() entries of Values are meaningful.
// Caller order carries no meaning; the packer re-establishes it.
type Input struct {
	Name   string
	Kind   Kind
	Values [16]float32
}

func NewFloat(name string, v float32) Input {
	return Input{Name: name, Kind: KindFloat, Values: [16]float32{v}}
}

func NewVec2(name string, v math.Vec2) Input {
	return Input{Name: name, Kind: KindVec2, Values: [16]float32{v.X, v.Y}}
}

func NewVec3(name string, v math.Vec3) Input {
	return Input{Name: name, Kind: KindVec3, Values: [16]float32{v.X, v.Y, v.Z}}
}

func NewVec4(name string, v math.Vec4) Input {
	return Input{Name: name, Kind: KindVec4, Values: [16]float32{v.X, v.Y, v.Z, v.W}}
}

func NewMat4(name string, m math.Mat4) Input {
	return Input{Name: name, Kind: KindMat4, Values: m.Data}
}
