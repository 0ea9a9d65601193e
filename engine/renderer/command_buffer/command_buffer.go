// Package command_buffer records render commands for deferred execution by the renderer.
// Recording is CPU-only; nothing touches the GPU until Renderer.ExecuteCommandBuffer replays
// the commands in order.
package command_buffer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
)

// CommandType identifies a recorded command.
type CommandType int

const (
	CommandSetRenderTarget CommandType = iota
	CommandSetViewport
	CommandSetRandomWriteTarget
	CommandClearRandomWriteTargets
	CommandEnableKeyword
	CommandDisableKeyword
	CommandSetGlobalVector
	CommandSetGlobalTexture
	CommandSetGlobalInt
	CommandSetGlobalFloatArray
	CommandDrawMesh
)

func (t CommandType) String() string {
	switch t {
	case CommandSetRenderTarget:
		return "SetRenderTarget"
	case CommandSetViewport:
		return "SetViewport"
	case CommandSetRandomWriteTarget:
		return "SetRandomWriteTarget"
	case CommandClearRandomWriteTargets:
		return "ClearRandomWriteTargets"
	case CommandEnableKeyword:
		return "EnableKeyword"
	case CommandDisableKeyword:
		return "DisableKeyword"
	case CommandSetGlobalVector:
		return "SetGlobalVector"
	case CommandSetGlobalTexture:
		return "SetGlobalTexture"
	case CommandSetGlobalInt:
		return "SetGlobalInt"
	case CommandSetGlobalFloatArray:
		return "SetGlobalFloatArray"
	case CommandDrawMesh:
		return "DrawMesh"
	default:
		return fmt.Sprintf("CommandType(%d)", int(t))
	}
}

// Mesh is non-indexed triangle-list geometry with one vec2<f32> position per vertex.
// The renderer uploads it once through InitMeshBuffers.
type Mesh struct {
	Label     string
	Positions [][2]float32
}

// Viewport is a pixel rectangle within the render target.
type Viewport struct {
	X, Y, Width, Height int
}

// Command is one recorded operation. Only the fields relevant to Type are set.
type Command struct {
	Type     CommandType
	Target   texture.Texture
	Slot     int
	Viewport Viewport
	Name     string
	Vector   [4]float32
	Int      int32
	Floats   []float32
	Mesh     *Mesh
	Material material.Material
}

// commandBuffer is the implementation of the CommandBuffer interface.
type commandBuffer struct {
	name     string
	commands []Command
}

// CommandBuffer is an ordered list of render commands. Global keywords and properties set by
// the buffer apply to every draw recorded after them and persist in the renderer after the
// buffer has executed, until they are changed again.
type CommandBuffer interface {
	// Name returns the buffer name, used as the GPU debug label of its command encoder.
	Name() string

	// SetRenderTarget records a change of colour attachment. A nil target ends rendering to the
	// previous target without starting a new pass.
	SetRenderTarget(target texture.Texture)

	// SetViewport records a viewport change for subsequent draws.
	SetViewport(x, y, width, height int)

	// SetRandomWriteTarget binds a random-write texture for subsequent draws. Slot n is bound to
	// the storage texture declared at @group(1) @binding(n) of the fragment program.
	SetRandomWriteTarget(slot int, target texture.Texture)

	// ClearRandomWriteTargets unbinds every random-write texture.
	ClearRandomWriteTargets()

	// EnableKeyword enables a global keyword.
	EnableKeyword(kw string)

	// DisableKeyword disables a global keyword.
	DisableKeyword(kw string)

	// SetGlobalVector sets a global vec4 property.
	SetGlobalVector(name string, v [4]float32)

	// SetGlobalTexture sets a global texture property. A nil texture unbinds it.
	SetGlobalTexture(name string, tex texture.Texture)

	// SetGlobalInt sets a global integer property.
	SetGlobalInt(name string, v int32)

	// SetGlobalFloatArray sets a global float array property. The slice is referenced.
	SetGlobalFloatArray(name string, values []float32)

	// DrawMesh records a draw of mesh with the raster material m into the current render target.
	DrawMesh(mesh *Mesh, m material.Material)

	// Commands returns the recorded commands in order.
	Commands() []Command

	// Len returns the number of recorded commands.
	Len() int

	// Clear drops every recorded command, keeping the name.
	Clear()
}

var _ CommandBuffer = &commandBuffer{}

// NewCommandBuffer creates an empty CommandBuffer.
//
// Parameters:
//   - name: the buffer name
//
// Returns:
//   - CommandBuffer: the new buffer
func NewCommandBuffer(name string) CommandBuffer {
	return &commandBuffer{name: name}
}

func (cb *commandBuffer) record(c Command) {
	cb.commands = append(cb.commands, c)
}

func (cb *commandBuffer) Name() string {
	return cb.name
}

func (cb *commandBuffer) SetRenderTarget(target texture.Texture) {
	cb.record(Command{Type: CommandSetRenderTarget, Target: target})
}

func (cb *commandBuffer) SetViewport(x, y, width, height int) {
	cb.record(Command{Type: CommandSetViewport, Viewport: Viewport{x, y, width, height}})
}

func (cb *commandBuffer) SetRandomWriteTarget(slot int, target texture.Texture) {
	cb.record(Command{Type: CommandSetRandomWriteTarget, Slot: slot, Target: target})
}

func (cb *commandBuffer) ClearRandomWriteTargets() {
	cb.record(Command{Type: CommandClearRandomWriteTargets})
}

func (cb *commandBuffer) EnableKeyword(kw string) {
	cb.record(Command{Type: CommandEnableKeyword, Name: kw})
}

func (cb *commandBuffer) DisableKeyword(kw string) {
	cb.record(Command{Type: CommandDisableKeyword, Name: kw})
}

func (cb *commandBuffer) SetGlobalVector(name string, v [4]float32) {
	cb.record(Command{Type: CommandSetGlobalVector, Name: name, Vector: v})
}

func (cb *commandBuffer) SetGlobalTexture(name string, tex texture.Texture) {
	cb.record(Command{Type: CommandSetGlobalTexture, Name: name, Target: tex})
}

func (cb *commandBuffer) SetGlobalInt(name string, v int32) {
	cb.record(Command{Type: CommandSetGlobalInt, Name: name, Int: v})
}

func (cb *commandBuffer) SetGlobalFloatArray(name string, values []float32) {
	cb.record(Command{Type: CommandSetGlobalFloatArray, Name: name, Floats: values})
}

func (cb *commandBuffer) DrawMesh(mesh *Mesh, m material.Material) {
	cb.record(Command{Type: CommandDrawMesh, Mesh: mesh, Material: m})
}

func (cb *commandBuffer) Commands() []Command {
	return cb.commands
}

func (cb *commandBuffer) Len() int {
	return len(cb.commands)
}

func (cb *commandBuffer) Clear() {
	clear(cb.commands)
	cb.commands = cb.commands[:0]
}
