package uniform

import (
	"encoding/binary"
	m "math"
	"sort"

	"github.com/spaghettifunk/albedo/engine/core"
	"github.com/spaghettifunk/albedo/engine/math"
)

// Entry records where one input landed in the packed block.
type Entry struct {
	Input Input
	// Offset is the byte offset of the first component.
	Offset uint64
	// Width is the effective width in components, padding included.
	Width int
}

// Layout is the result of packing a set of inputs: the ordered byte
// block ready for upload and the location of every value in it.
type Layout struct {
	Entries   []Entry
	TotalSize uint64
	Data      []byte
}

// Entry looks an input up by name.
func (l *Layout) Entry(name string) (Entry, bool) {
	for _, e := range l.Entries {
		if e.Input.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Uniform blocks are laid out with vec4 alignment: wider types first
// (mat4, vec4, vec3, vec2, float), and a vec3 occupies four components
// unless a float sits right behind it to fill the gap. Pack reorders
// the inputs accordingly, splices floats behind unpaired vec3 entries
// and writes the values into a zero-filled block whose size is rounded
// up to a multiple of 16 bytes.
//
// An unsupported input kind is a caller bug and aborts.
func Pack(inputs []Input) *Layout {
	ordered := make([]Input, len(inputs))
	copy(ordered, inputs)

	for _, in := range ordered {
		switch in.Kind {
		case KindFloat, KindVec2, KindVec3, KindVec4, KindMat4:
		case KindMat3:
			// Alignment for mat3 is not handled, so not supported.
			core.LogFatal("input %s: mat3 not supported in uniform blocks", in.Name)
		default:
			core.LogFatal("input %s: kind %s not supported in uniform blocks", in.Name, in.Kind)
		}
	}

	// Order them as mat4, vec4, vec3, vec2, float. Ties keep the
	// caller's relative order.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind > ordered[j].Kind
	})

	packFloatsBehindVec3s(ordered)

	totalComponents := 0
	for i := range ordered {
		totalComponents += effectiveWidth(ordered, i)
	}
	// Round up to the size of a vec4.
	totalSize := math.RoundUp(uint64(totalComponents)*4, 16)

	// Padding stays zero; it is never read back.
	data := make([]byte, totalSize)
	entries := make([]Entry, len(ordered))
	offset := 0
	for i, in := range ordered {
		width := effectiveWidth(ordered, i)
		for c := 0; c < in.Kind.Components(); c++ {
			binary.LittleEndian.PutUint32(data[offset+c*4:], m.Float32bits(in.Values[c]))
		}
		entries[i] = Entry{Input: in, Offset: uint64(offset), Width: width}
		offset += width * 4
	}

	return &Layout{
		Entries:   entries,
		TotalSize: totalSize,
		Data:      data,
	}
}

// packFloatsBehindVec3s walks the run of consecutive vec3 entries in
// the sorted sequence. Every vec3 not already trailed by a float
// steals the next unconsumed float from further down the list so the
// pair fills a vec4 with no waste. Vec3 entries left without a float
// get padded by effectiveWidth instead.
func packFloatsBehindVec3s(ordered []Input) {
	i := 0
	for i < len(ordered) && ordered[i].Kind != KindVec3 {
		i++
	}
	// No vec3, no alignment work.
	if i == len(ordered) {
		return
	}

	for i < len(ordered) && ordered[i].Kind == KindVec3 {
		next := i + 1
		// Trailed by nothing or by a float already: nothing to do.
		if next == len(ordered) || ordered[next].Kind == KindFloat {
			break
		}

		// Floats sort to the tail; find the first one not yet consumed.
		f := next
		for f < len(ordered) && ordered[f].Kind != KindFloat {
			f++
		}
		if f == len(ordered) {
			// None left. This vec3 and every one after it get padded.
			i++
			continue
		}

		// Splice the float to sit immediately after the vec3.
		fl := ordered[f]
		copy(ordered[next+1:f+1], ordered[next:f])
		ordered[next] = fl
		// Skip over the float we just placed.
		i += 2
	}
}

// effectiveWidth is the number of components entry i actually occupies
// in the packed block: 3 for a vec3 followed by a float, 4 for any
// other vec3, the component count otherwise.
func effectiveWidth(ordered []Input, i int) int {
	in := ordered[i]
	if in.Kind == KindVec3 {
		if i+1 < len(ordered) && ordered[i+1].Kind == KindFloat {
			return 3
		}
		return 4
	}
	return in.Kind.Components()
}
