/*
Lumen is a small Vulkan rendering engine. This entry point brings up a
window, loads the demo assets referenced in the configuration file and
renders the scene until the window closes.
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/config"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/vulkan"
)

func main() {
	configPath := flag.String("config", "lumen.toml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogWarn("could not load %s (%s), using defaults", *configPath, err)
		cfg = config.Default()
	}
	core.SetLogLevel(cfg.LogLevel)

	p, err := platform.New()
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := p.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		core.LogFatal(err.Error())
	}
	defer p.Shutdown()

	renderer := vulkan.New(p, cfg.Anisotropy)
	p.OnResize = func(width, height uint16) {
		renderer.Resized(width, height)
	}
	if err := renderer.Initialize(cfg.Name, cfg.StartWidth, cfg.StartHeight); err != nil {
		core.LogFatal(err.Error())
	}
	defer renderer.Shutdown()

	assetManager, err := assets.NewAssetManager(assets.NewResolver(cfg.AssetRoot))
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := assetManager.Initialize(cfg.TextureConverter); err != nil {
		core.LogFatal(err.Error())
	}
	defer assetManager.Shutdown()

	context := renderer.Context()

	// Demo scene: one texture, one mesh, one pipeline.
	var texture *metadata.Texture
	if resource, err := assetManager.LoadAsset("textures/default.ktx", metadata.ResourceTypeImage, nil); err != nil {
		core.LogWarn("demo texture not loaded: %s", err)
	} else {
		container := resource.Data.(*metadata.ImageContainer)
		texture, err = vulkan.TextureCreateFromContainer(context, resource.Name, container)
		if err != nil {
			core.LogFatal(err.Error())
		}
		defer vulkan.TextureDestroy(context, texture)
	}

	layout := metadata.NewVertexLayout(
		metadata.VertexComponentPosition,
		metadata.VertexComponentNormal,
		metadata.VertexComponentUV,
	)

	var mesh *vulkan.VulkanMesh
	if resource, err := assetManager.LoadAsset("models/cube.gltf", metadata.ResourceTypeMesh, nil); err != nil {
		core.LogWarn("demo mesh not loaded: %s", err)
	} else {
		source := resource.Data.(*metadata.MeshSource)
		mesh, err = vulkan.MeshUpload(context, source, layout)
		if err != nil {
			core.LogFatal(err.Error())
		}
		defer mesh.Destroy(context)
	}

	var pipeline *vulkan.VulkanPipeline
	builder := vulkan.NewPipelineBuilder(context, context.MainRenderpass).SetVertexLayout(layout)
	vertPath, vertErr := assetManager.Resolve("shaders/builtin.vert.spv")
	fragPath, fragErr := assetManager.Resolve("shaders/builtin.frag.spv")
	if vertErr != nil || fragErr != nil {
		core.LogWarn("demo shaders not found, rendering clear color only")
	} else {
		if err := builder.LoadShader(vertPath, vk.ShaderStageVertexBit); err != nil {
			core.LogFatal(err.Error())
		}
		if err := builder.LoadShader(fragPath, vk.ShaderStageFragmentBit); err != nil {
			core.LogFatal(err.Error())
		}
		pipeline, err = builder.Build(vk.NullPipelineCache)
		if err != nil {
			core.LogFatal(err.Error())
		}
		defer pipeline.Destroy(context)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		p.Window.SetShouldClose(true)
	}()

	for !p.ShouldClose() {
		p.PumpMessages()

		if err := renderer.BeginFrame(0); err != nil {
			// A skipped frame recorded nothing, so there is nothing to end.
			if !errors.Is(err, vulkan.ErrFrameSkipped) {
				core.LogError(err.Error())
			}
			continue
		}
		if pipeline != nil && mesh != nil {
			commandBuffer := renderer.CurrentCommandBuffer()
			pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
			mesh.Draw(commandBuffer)
		}
		if err := renderer.EndFrame(0); err != nil {
			core.LogError(err.Error())
		}
	}
}
