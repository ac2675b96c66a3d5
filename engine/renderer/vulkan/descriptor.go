package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

type DescriptorSetLayout = Owned[vk.DescriptorSetLayout]

var DescriptorSetLayoutKind = Kind[vk.DescriptorSetLayout]{
	Name: "descriptor set layout",
	Destroy: func(d *Device, h vk.DescriptorSetLayout) {
		d.Driver.DestroyDescriptorSetLayout(d.Handle, h)
	},
}

// createDescriptorSetLayout issues one create call covering every binding
// as set 0.
func createDescriptorSetLayout(device *Device, bindings []vk.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	info := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: count(len(bindings)),
		PBindings:    bindings,
	}
	handle, result := device.Driver.CreateDescriptorSetLayout(device.Handle, &info)
	if err := checkCreated(device, DescriptorSetLayoutKind, "vkCreateDescriptorSetLayout", result, handle); err != nil {
		return nil, err
	}

	layout := NewOwned(device, DescriptorSetLayoutKind)
	layout.Adopt(handle, true)
	core.LogDebug("descriptor set layout created with %d bindings", info.BindingCount)
	return layout, nil
}
