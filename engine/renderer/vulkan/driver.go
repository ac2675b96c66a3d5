package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Driver is the narrow slice of the native API this package needs. The
// default implementation forwards to goki/vulkan; tests swap in a fake.
type Driver interface {
	CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result)
	DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool)

	CreatePipelineCache(device vk.Device, info *vk.PipelineCacheCreateInfo) (vk.PipelineCache, vk.Result)
	DestroyPipelineCache(device vk.Device, cache vk.PipelineCache)

	CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result)
	DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout)

	CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)

	CreateGraphicsPipelines(device vk.Device, cache vk.PipelineCache, infos []vk.GraphicsPipelineCreateInfo) ([]vk.Pipeline, vk.Result)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)
}

type vulkanDriver struct {
	allocator *vk.AllocationCallbacks
	locks     *LockPool
}

// NewVulkanDriver returns a Driver backed by the loaded Vulkan library.
// allocator may be nil.
func NewVulkanDriver(allocator *vk.AllocationCallbacks) Driver {
	return &vulkanDriver{
		allocator: allocator,
		locks:     NewLockPool(),
	}
}

func (d *vulkanDriver) CreateDescriptorPool(device vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	var pool vk.DescriptorPool
	var result vk.Result
	d.locks.SafeCall(ResourceManagement, func() {
		result = vk.CreateDescriptorPool(device, info, d.allocator, &pool)
	})
	return pool, result
}

func (d *vulkanDriver) DestroyDescriptorPool(device vk.Device, pool vk.DescriptorPool) {
	d.locks.SafeCall(ResourceManagement, func() {
		vk.DestroyDescriptorPool(device, pool, d.allocator)
	})
}

func (d *vulkanDriver) CreatePipelineCache(device vk.Device, info *vk.PipelineCacheCreateInfo) (vk.PipelineCache, vk.Result) {
	var cache vk.PipelineCache
	var result vk.Result
	d.locks.SafeCall(PipelineManagement, func() {
		result = vk.CreatePipelineCache(device, info, d.allocator, &cache)
	})
	return cache, result
}

func (d *vulkanDriver) DestroyPipelineCache(device vk.Device, cache vk.PipelineCache) {
	d.locks.SafeCall(PipelineManagement, func() {
		vk.DestroyPipelineCache(device, cache, d.allocator)
	})
}

func (d *vulkanDriver) CreateDescriptorSetLayout(device vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	var layout vk.DescriptorSetLayout
	var result vk.Result
	d.locks.SafeCall(ResourceManagement, func() {
		result = vk.CreateDescriptorSetLayout(device, info, d.allocator, &layout)
	})
	return layout, result
}

func (d *vulkanDriver) DestroyDescriptorSetLayout(device vk.Device, layout vk.DescriptorSetLayout) {
	d.locks.SafeCall(ResourceManagement, func() {
		vk.DestroyDescriptorSetLayout(device, layout, d.allocator)
	})
}

func (d *vulkanDriver) CreatePipelineLayout(device vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	var layout vk.PipelineLayout
	var result vk.Result
	d.locks.SafeCall(PipelineManagement, func() {
		result = vk.CreatePipelineLayout(device, info, d.allocator, &layout)
	})
	return layout, result
}

func (d *vulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	d.locks.SafeCall(PipelineManagement, func() {
		vk.DestroyPipelineLayout(device, layout, d.allocator)
	})
}

func (d *vulkanDriver) CreateGraphicsPipelines(device vk.Device, cache vk.PipelineCache, infos []vk.GraphicsPipelineCreateInfo) ([]vk.Pipeline, vk.Result) {
	pipelines := make([]vk.Pipeline, len(infos))
	var result vk.Result
	d.locks.SafeCall(PipelineManagement, func() {
		result = vk.CreateGraphicsPipelines(device, cache, count(len(infos)), infos, d.allocator, pipelines)
	})
	return pipelines, result
}

func (d *vulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	d.locks.SafeCall(PipelineManagement, func() {
		vk.DestroyPipeline(device, pipeline, d.allocator)
	})
}
