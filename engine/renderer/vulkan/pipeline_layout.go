package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

type PipelineLayout = Owned[vk.PipelineLayout]

var PipelineLayoutKind = Kind[vk.PipelineLayout]{
	Name: "pipeline layout",
	Destroy: func(d *Device, h vk.PipelineLayout) {
		d.Driver.DestroyPipelineLayout(d.Handle, h)
	},
}

// NewPipelineLayout creates a layout with exactly one descriptor set
// layout and no push constants. setLayout is not owned by the result.
func NewPipelineLayout(device *Device, setLayout vk.DescriptorSetLayout) (*PipelineLayout, error) {
	info := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}
	handle, result := device.Driver.CreatePipelineLayout(device.Handle, &info)
	if err := checkCreated(device, PipelineLayoutKind, "vkCreatePipelineLayout", result, handle); err != nil {
		return nil, err
	}

	layout := NewOwned(device, PipelineLayoutKind)
	layout.Adopt(handle, true)
	core.LogDebug("pipeline layout created")
	return layout, nil
}
