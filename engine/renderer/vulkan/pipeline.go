package vulkan

import (
	"errors"

	vk "github.com/goki/vulkan"
)

// ErrNoPipelineLayout is returned by NewPipeline when no layout is given.
var ErrNoPipelineLayout = errors.New("graphics pipeline needs a pipeline layout")

type Pipeline = Owned[vk.Pipeline]

var PipelineKind = Kind[vk.Pipeline]{
	Name: "graphics pipeline",
	Destroy: func(d *Device, h vk.Pipeline) {
		d.Driver.DestroyPipeline(d.Handle, h)
	},
}

// NewPipeline creates a graphics pipeline from builder's state. The
// render pass, cache and layout are only borrowed for the call. A nil
// cache creates the pipeline without one.
func NewPipeline(device *Device, renderPass vk.RenderPass, cache *PipelineCache, layout *PipelineLayout, builder *PipelineBuilder) (*Pipeline, error) {
	if layout == nil || layout.IsEmpty() {
		return nil, ErrNoPipelineLayout
	}
	cacheHandle := vk.NullPipelineCache
	if cache != nil {
		cacheHandle = cache.Handle()
	}

	handle, err := builder.CreateGraphicsPipeline(device, renderPass, layout.Handle(), cacheHandle)
	if err != nil {
		return nil, err
	}

	pipeline := NewOwned(device, PipelineKind)
	pipeline.Adopt(handle, true)
	return pipeline, nil
}
