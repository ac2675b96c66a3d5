package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

type PipelineCache = Owned[vk.PipelineCache]

var PipelineCacheKind = Kind[vk.PipelineCache]{
	Name: "pipeline cache",
	Destroy: func(d *Device, h vk.PipelineCache) {
		d.Driver.DestroyPipelineCache(d.Handle, h)
	},
}

// NewPipelineCache creates an empty pipeline cache. There is no way to
// seed it from, or dump it to, a serialized blob.
func NewPipelineCache(device *Device) (*PipelineCache, error) {
	info := vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}
	handle, result := device.Driver.CreatePipelineCache(device.Handle, &info)
	if err := checkCreated(device, PipelineCacheKind, "vkCreatePipelineCache", result, handle); err != nil {
		return nil, err
	}

	cache := NewOwned(device, PipelineCacheKind)
	cache.Adopt(handle, true)
	core.LogDebug("pipeline cache created")
	return cache, nil
}
