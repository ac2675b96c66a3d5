package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

type DescriptorPool = Owned[vk.DescriptorPool]

var DescriptorPoolKind = Kind[vk.DescriptorPool]{
	Name: "descriptor pool",
	Destroy: func(d *Device, h vk.DescriptorPool) {
		d.Driver.DestroyDescriptorPool(d.Handle, h)
	},
}

// DescriptorPoolSizing accumulates pool-size entries for a new descriptor
// pool. Repeating a descriptor type adds another entry; counts are never
// merged.
//
// Unless pinned with MaxSets, the pool's maxSets is the number of entries
// times the per-entry multiplier, core.DefaultMaxSetsPerEntry by default.
type DescriptorPoolSizing struct {
	entries         []vk.DescriptorPoolSize
	maxSetsPerEntry uint32
	maxSets         uint32
}

func NewDescriptorPoolSizing() *DescriptorPoolSizing {
	return &DescriptorPoolSizing{maxSetsPerEntry: core.DefaultMaxSetsPerEntry}
}

// Descriptors appends an entry of descriptorCount descriptors of kind.
func (s *DescriptorPoolSizing) Descriptors(kind vk.DescriptorType, descriptorCount uint32) *DescriptorPoolSizing {
	s.entries = append(s.entries, vk.DescriptorPoolSize{
		Type:            kind,
		DescriptorCount: descriptorCount,
	})
	return s
}

func (s *DescriptorPoolSizing) Samplers(descriptorCount uint32) *DescriptorPoolSizing {
	return s.Descriptors(vk.DescriptorTypeSampler, descriptorCount)
}

func (s *DescriptorPoolSizing) CombinedImageSamplers(descriptorCount uint32) *DescriptorPoolSizing {
	return s.Descriptors(vk.DescriptorTypeCombinedImageSampler, descriptorCount)
}

func (s *DescriptorPoolSizing) UniformBuffers(descriptorCount uint32) *DescriptorPoolSizing {
	return s.Descriptors(vk.DescriptorTypeUniformBuffer, descriptorCount)
}

// MaxSetsPerEntry changes the multiplier used to derive maxSets. Zero
// restores the default.
func (s *DescriptorPoolSizing) MaxSetsPerEntry(n uint32) *DescriptorPoolSizing {
	if n == 0 {
		n = core.DefaultMaxSetsPerEntry
	}
	s.maxSetsPerEntry = n
	return s
}

// MaxSets pins maxSets to n regardless of the entry count. Zero goes back
// to the per-entry policy.
func (s *DescriptorPoolSizing) MaxSets(n uint32) *DescriptorPoolSizing {
	s.maxSets = n
	return s
}

// Entries returns a copy of the pool-size entries in insertion order.
func (s *DescriptorPoolSizing) Entries() []vk.DescriptorPoolSize {
	out := make([]vk.DescriptorPoolSize, len(s.entries))
	copy(out, s.entries)
	return out
}

// ResolvedMaxSets is the maxSets value the pool will be created with.
func (s *DescriptorPoolSizing) ResolvedMaxSets() uint32 {
	if s.maxSets != 0 {
		return s.maxSets
	}
	return count(len(s.entries)) * s.maxSetsPerEntry
}

// CreateInfo builds the native request for the current entries.
func (s *DescriptorPoolSizing) CreateInfo() vk.DescriptorPoolCreateInfo {
	return vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       s.ResolvedMaxSets(),
		PoolSizeCount: count(len(s.entries)),
		PPoolSizes:    s.Entries(),
	}
}

// CreatePool creates a descriptor pool sized by s.
func (s *DescriptorPoolSizing) CreatePool(device *Device) (*DescriptorPool, error) {
	info := s.CreateInfo()
	handle, result := device.Driver.CreateDescriptorPool(device.Handle, &info)
	if err := checkCreated(device, DescriptorPoolKind, "vkCreateDescriptorPool", result, handle); err != nil {
		return nil, err
	}

	pool := NewOwned(device, DescriptorPoolKind)
	pool.Adopt(handle, true)
	core.LogDebug("descriptor pool created (%d entries, maxSets %d)", info.PoolSizeCount, info.MaxSets)
	return pool, nil
}

// NewDescriptorPool is CreatePool spelled from the device side.
func NewDescriptorPool(device *Device, sizing *DescriptorPoolSizing) (*DescriptorPool, error) {
	return sizing.CreatePool(device)
}
