// Package manifest describes graphics pipelines in TOML files and turns
// them into pipeline builders and descriptor pool sizings.
//
// A manifest looks like:
//
//	name = "textured"
//	topology = "triangle_list"
//	cull_mode = "back"
//
//	[[shaders]]
//	stage = "vertex"
//	module = "textured.vert"
//
//	[[bindings]]
//	binding = 0
//	stride = 32
//
//	[[attributes]]
//	location = 0
//	binding = 0
//	format = "r32g32b32_sfloat"
//	offset = 0
//
//	[[descriptors]]
//	binding = 0
//	kind = "uniform_buffer"
//	stages = ["vertex"]
//
//	[pool]
//	max_sets_per_entry = 4
//
//	[[pool.sizes]]
//	kind = "uniform_buffer"
//	count = 16
//
// Shader modules are referenced by name and resolved against the modules
// the caller has already compiled.
package manifest

import (
	"errors"
	"fmt"
	"os"

	vk "github.com/goki/vulkan"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkforge/engine/core"
	"github.com/spaghettifunk/vkforge/engine/renderer/vulkan"
)

var (
	ErrUnknownName   = errors.New("unknown name")
	ErrUnknownShader = errors.New("unknown shader module")
)

// ShaderModules maps the module names used in manifests to compiled
// modules.
type ShaderModules map[string]vk.ShaderModule

type ShaderSpec struct {
	Stage  string `toml:"stage"`
	Module string `toml:"module"`
	Entry  string `toml:"entry"`
}

type BindingSpec struct {
	Binding uint32 `toml:"binding"`
	Stride  uint32 `toml:"stride"`
	Rate    string `toml:"rate"`
}

type AttributeSpec struct {
	Location uint32 `toml:"location"`
	Binding  uint32 `toml:"binding"`
	Format   string `toml:"format"`
	Offset   uint32 `toml:"offset"`
}

type DescriptorSpec struct {
	Binding uint32   `toml:"binding"`
	Kind    string   `toml:"kind"`
	Stages  []string `toml:"stages"`
}

type DepthSpec struct {
	Test    bool   `toml:"test"`
	Write   bool   `toml:"write"`
	Compare string `toml:"compare"`
}

type PoolSizeSpec struct {
	Kind  string `toml:"kind"`
	Count uint32 `toml:"count"`
}

type PoolSpec struct {
	MaxSetsPerEntry uint32         `toml:"max_sets_per_entry"`
	MaxSets         uint32         `toml:"max_sets"`
	Sizes           []PoolSizeSpec `toml:"sizes"`
}

// Manifest is the decoded form of a pipeline description. Empty
// fixed-function fields keep the builder defaults.
type Manifest struct {
	Name        string           `toml:"name"`
	Topology    string           `toml:"topology"`
	PolygonMode string           `toml:"polygon_mode"`
	CullMode    string           `toml:"cull_mode"`
	FrontFace   string           `toml:"front_face"`
	LineWidth   float32          `toml:"line_width"`
	Samples     int              `toml:"samples"`
	AlphaBlend  bool             `toml:"alpha_blend"`
	Depth       *DepthSpec       `toml:"depth"`
	Shaders     []ShaderSpec     `toml:"shaders"`
	Bindings    []BindingSpec    `toml:"bindings"`
	Attributes  []AttributeSpec  `toml:"attributes"`
	Descriptors []DescriptorSpec `toml:"descriptors"`
	Pool        PoolSpec         `toml:"pool"`
}

// Parse decodes a manifest and checks every enum name in it.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if _, err := m.apply(vulkan.NewPipelineBuilder(), nil); err != nil {
		return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
	}
	if _, err := m.sizing(core.DefaultMaxSetsPerEntry); err != nil {
		return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
	}
	return m, nil
}

func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Builder returns a fresh pipeline builder configured from the manifest.
// Every shader module named by the manifest must be present in modules.
func (m *Manifest) Builder(modules ShaderModules) (*vulkan.PipelineBuilder, error) {
	b, err := m.apply(vulkan.NewPipelineBuilder(), modules)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
	}
	return b, nil
}

// PoolSizing returns the descriptor pool sizing of the manifest. The
// manifest's own max_sets_per_entry wins over the one in settings.
func (m *Manifest) PoolSizing(settings core.Settings) (*vulkan.DescriptorPoolSizing, error) {
	s, err := m.sizing(settings.DescriptorPool.MaxSetsPerEntry)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", m.Name, err)
	}
	return s, nil
}

func (m *Manifest) sizing(perEntry uint32) (*vulkan.DescriptorPoolSizing, error) {
	if m.Pool.MaxSetsPerEntry != 0 {
		perEntry = m.Pool.MaxSetsPerEntry
	}
	s := vulkan.NewDescriptorPoolSizing().MaxSetsPerEntry(perEntry).MaxSets(m.Pool.MaxSets)
	for _, size := range m.Pool.Sizes {
		kind, err := lookup(descriptorKinds, "descriptor kind", size.Kind)
		if err != nil {
			return nil, err
		}
		s.Descriptors(kind, size.Count)
	}
	return s, nil
}

// apply replays the manifest onto b. With nil modules shader names are
// not resolved, which is how Parse checks a manifest up front.
func (m *Manifest) apply(b *vulkan.PipelineBuilder, modules ShaderModules) (*vulkan.PipelineBuilder, error) {
	if m.Topology != "" {
		v, err := lookup(topologies, "topology", m.Topology)
		if err != nil {
			return nil, err
		}
		b.Topology(v)
	}
	if m.PolygonMode != "" {
		v, err := lookup(polygonModes, "polygon mode", m.PolygonMode)
		if err != nil {
			return nil, err
		}
		b.PolygonMode(v)
	}
	if m.CullMode != "" {
		v, err := lookup(cullModes, "cull mode", m.CullMode)
		if err != nil {
			return nil, err
		}
		b.CullMode(v)
	}
	if m.FrontFace != "" {
		v, err := lookup(frontFaces, "front face", m.FrontFace)
		if err != nil {
			return nil, err
		}
		b.FrontFace(v)
	}
	if m.LineWidth != 0 {
		b.LineWidth(m.LineWidth)
	}
	if m.Samples != 0 {
		v, ok := sampleCounts[m.Samples]
		if !ok {
			return nil, fmt.Errorf("%w: sample count %d", ErrUnknownName, m.Samples)
		}
		b.Samples(v)
	}
	if m.Depth != nil {
		op := vk.CompareOpLessOrEqual
		if m.Depth.Compare != "" {
			v, err := lookup(compareOps, "compare op", m.Depth.Compare)
			if err != nil {
				return nil, err
			}
			op = v
		}
		b.DepthTest(m.Depth.Test, m.Depth.Write, op)
	}
	b.AlphaBlend(m.AlphaBlend)

	for _, s := range m.Shaders {
		stage, err := lookup(shaderStages, "shader stage", s.Stage)
		if err != nil {
			return nil, err
		}
		var module vk.ShaderModule
		if modules != nil {
			var ok bool
			if module, ok = modules[s.Module]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownShader, s.Module)
			}
		}
		b.Shader(module, stage, s.Entry)
	}

	for _, bd := range m.Bindings {
		rate := vk.VertexInputRateVertex
		if bd.Rate != "" {
			v, err := lookup(inputRates, "input rate", bd.Rate)
			if err != nil {
				return nil, err
			}
			rate = v
		}
		b.Binding(bd.Binding, bd.Stride, rate)
	}

	for _, a := range m.Attributes {
		format, err := lookup(formats, "format", a.Format)
		if err != nil {
			return nil, err
		}
		b.Attrib(a.Location, a.Binding, format, a.Offset)
	}

	for _, d := range m.Descriptors {
		kind, err := lookup(descriptorKinds, "descriptor kind", d.Kind)
		if err != nil {
			return nil, err
		}
		stages, err := stageMask(d.Stages)
		if err != nil {
			return nil, err
		}
		b.LayoutBinding(d.Binding, kind, stages)
	}
	return b, nil
}
