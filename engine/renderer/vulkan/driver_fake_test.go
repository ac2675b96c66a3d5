package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// fakeHandle fabricates a non-nil handle value. Only ever compared and
// printed, never dereferenced.
func fakeHandle[T any](n uintptr) T {
	var h T
	*(*unsafe.Pointer)(unsafe.Pointer(&h)) = unsafe.Add(unsafe.Pointer(nil), n)
	return h
}

// fakeDriver records every request and hands out distinct handles.
// Operations listed in fail report the given result instead, with a null
// handle unless the operation is also in failWithHandle.
type fakeDriver struct {
	next           uintptr
	fail           map[string]vk.Result
	failWithHandle map[string]bool

	poolInfos      []vk.DescriptorPoolCreateInfo
	cacheInfos     []vk.PipelineCacheCreateInfo
	setLayoutInfos []vk.DescriptorSetLayoutCreateInfo
	layoutInfos    []vk.PipelineLayoutCreateInfo
	pipelineInfos  []vk.GraphicsPipelineCreateInfo
	pipelineCaches []vk.PipelineCache

	destroyed    map[any]int
	destroyOrder []any
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		next:      0x100,
		fail:           make(map[string]vk.Result),
		failWithHandle: make(map[string]bool),
		destroyed:      make(map[any]int),
	}
}

func newTestDevice(t *testing.T, options ...DeviceOption) (*Device, *fakeDriver) {
	t.Helper()
	drv := newFakeDriver()
	options = append([]DeviceOption{WithDriver(drv)}, options...)
	return NewDevice(fakeHandle[vk.Device](0x10), options...), drv
}

func (f *fakeDriver) alloc() uintptr {
	f.next += 0x10
	return f.next
}

func (f *fakeDriver) failure(op string) (vk.Result, bool) {
	r, ok := f.fail[op]
	return r, ok
}

// failed returns the handle to pair with a failing result.
func failed[T any](f *fakeDriver, op string) T {
	if f.failWithHandle[op] {
		return fakeHandle[T](f.alloc())
	}
	var null T
	return null
}

func (f *fakeDriver) destroy(h any) {
	f.destroyed[h]++
	f.destroyOrder = append(f.destroyOrder, h)
}

func (f *fakeDriver) CreateDescriptorPool(_ vk.Device, info *vk.DescriptorPoolCreateInfo) (vk.DescriptorPool, vk.Result) {
	f.poolInfos = append(f.poolInfos, *info)
	if r, ok := f.failure("CreateDescriptorPool"); ok {
		return failed[vk.DescriptorPool](f, "CreateDescriptorPool"), r
	}
	return fakeHandle[vk.DescriptorPool](f.alloc()), vk.Success
}

func (f *fakeDriver) DestroyDescriptorPool(_ vk.Device, pool vk.DescriptorPool) {
	f.destroy(pool)
}

func (f *fakeDriver) CreatePipelineCache(_ vk.Device, info *vk.PipelineCacheCreateInfo) (vk.PipelineCache, vk.Result) {
	f.cacheInfos = append(f.cacheInfos, *info)
	if r, ok := f.failure("CreatePipelineCache"); ok {
		return failed[vk.PipelineCache](f, "CreatePipelineCache"), r
	}
	return fakeHandle[vk.PipelineCache](f.alloc()), vk.Success
}

func (f *fakeDriver) DestroyPipelineCache(_ vk.Device, cache vk.PipelineCache) {
	f.destroy(cache)
}

func (f *fakeDriver) CreateDescriptorSetLayout(_ vk.Device, info *vk.DescriptorSetLayoutCreateInfo) (vk.DescriptorSetLayout, vk.Result) {
	f.setLayoutInfos = append(f.setLayoutInfos, *info)
	if r, ok := f.failure("CreateDescriptorSetLayout"); ok {
		return failed[vk.DescriptorSetLayout](f, "CreateDescriptorSetLayout"), r
	}
	return fakeHandle[vk.DescriptorSetLayout](f.alloc()), vk.Success
}

func (f *fakeDriver) DestroyDescriptorSetLayout(_ vk.Device, layout vk.DescriptorSetLayout) {
	f.destroy(layout)
}

func (f *fakeDriver) CreatePipelineLayout(_ vk.Device, info *vk.PipelineLayoutCreateInfo) (vk.PipelineLayout, vk.Result) {
	f.layoutInfos = append(f.layoutInfos, *info)
	if r, ok := f.failure("CreatePipelineLayout"); ok {
		return failed[vk.PipelineLayout](f, "CreatePipelineLayout"), r
	}
	return fakeHandle[vk.PipelineLayout](f.alloc()), vk.Success
}

func (f *fakeDriver) DestroyPipelineLayout(_ vk.Device, layout vk.PipelineLayout) {
	f.destroy(layout)
}

func (f *fakeDriver) CreateGraphicsPipelines(_ vk.Device, cache vk.PipelineCache, infos []vk.GraphicsPipelineCreateInfo) ([]vk.Pipeline, vk.Result) {
	f.pipelineInfos = append(f.pipelineInfos, infos...)
	f.pipelineCaches = append(f.pipelineCaches, cache)
	out := make([]vk.Pipeline, len(infos))
	if r, ok := f.failure("CreateGraphicsPipelines"); ok {
		for i := range out {
			out[i] = failed[vk.Pipeline](f, "CreateGraphicsPipelines")
		}
		return out, r
	}
	for i := range out {
		out[i] = fakeHandle[vk.Pipeline](f.alloc())
	}
	return out, vk.Success
}

func (f *fakeDriver) DestroyPipeline(_ vk.Device, pipeline vk.Pipeline) {
	f.destroy(pipeline)
}
