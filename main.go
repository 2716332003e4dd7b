/*
This is an example application that packs a material-style set of
uniform values, creates buffers against the Vulkan backend and walks
them through their bind lifecycle.
*/
package main

import (
	"os"

	"github.com/spaghettifunk/albedo/engine/config"
	"github.com/spaghettifunk/albedo/engine/core"
	"github.com/spaghettifunk/albedo/engine/math"
	"github.com/spaghettifunk/albedo/engine/platform"
	"github.com/spaghettifunk/albedo/engine/renderer/uniform"
	"github.com/spaghettifunk/albedo/engine/renderer/vulkan"
)

func main() {
	cfg := config.Default()
	if len(os.Args) > 1 {
		loaded, err := config.Load(os.Args[1])
		if err != nil {
			core.LogFatal("cannot load config %s: %s", os.Args[1], err)
		}
		cfg = loaded

		watcher, err := config.Watch(os.Args[1], func(next *config.Config) {
			if err := core.SetLogLevel(next.LogLevel); err != nil {
				core.LogWarn("bad log level %q: %s", next.LogLevel, err)
			}
		})
		if err != nil {
			core.LogWarn("config watcher unavailable: %s", err)
		} else {
			defer watcher.Close()
		}
	}
	if err := core.SetLogLevel(cfg.LogLevel); err != nil {
		core.LogWarn("bad log level %q: %s", cfg.LogLevel, err)
	}
	core.MetricsInitialize()

	p, err := platform.New()
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := p.Startup(cfg.AppName); err != nil {
		core.LogFatal(err.Error())
	}
	defer p.Shutdown()

	backend := vulkan.New(p, cfg.Renderer.ValidationLayers, cfg.Renderer.MaxBindSlots)
	if err := backend.Initialize(cfg.AppName); err != nil {
		core.LogFatal(err.Error())
	}
	defer backend.Shutdown()

	core.LogInfo("device limits: max uniform buffer %d bytes, %d bind slots",
		backend.MaxBufferSize(), backend.MaxBindSlots())

	// A typical material block: widest types first after packing, the
	// lone float slotted behind the vec3 to fill its padding.
	inputs := []uniform.Input{
		uniform.NewFloat("roughness", 0.35),
		uniform.NewVec3("albedo", math.Vec3{X: 0.9, Y: 0.2, Z: 0.1}),
		uniform.NewVec4("emissive", math.Vec4{W: 1}),
		uniform.NewMat4("model", math.NewMat4Identity()),
	}

	material, err := uniform.NewDynamic(backend, inputs)
	if err != nil {
		core.LogFatal(err.Error())
	}
	material.Debug = cfg.Renderer.Debug

	for _, e := range material.Layout().Entries {
		core.LogInfo("packed %-10s %-6s offset=%3d width=%d", e.Input.Name, e.Input.Kind, e.Offset, e.Width)
	}

	// First bind allocates the device buffer and uploads the packed
	// payload; later binds only re-attach.
	if err := material.Bind(0); err != nil {
		core.LogFatal(err.Error())
	}
	material.Unbind()

	// A static globals block, uploaded at creation.
	globals := make([]byte, 128)
	frame, err := uniform.NewStatic(backend, uint64(len(globals)), globals)
	if err != nil {
		core.LogFatal(err.Error())
	}
	frame.Debug = cfg.Renderer.Debug
	if err := frame.Bind(1); err != nil {
		core.LogFatal(err.Error())
	}

	uniform.UnbindAll(backend)
	material.Destroy()
	frame.Destroy()

	m := core.MetricsSnapshot()
	core.LogInfo("allocations=%d uploads=%d bytes=%d binds=%d", m.Allocations, m.Uploads, m.UploadedBytes, m.Binds)
	if leaks := core.IdentifierLiveCount(); leaks > 0 {
		core.LogWarn("%d buffer(s) never destroyed", leaks)
	}
}
