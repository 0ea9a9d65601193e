package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-astc/common"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-astc/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

// samplerSuffix names the sampler paired with a texture: "_MainTex_Sampler" samples "_MainTex".
const samplerSuffix = "_Sampler"

// propertyLookup resolves the property bound to a program variable.
type propertyLookup func(group, binding int, name string) (material.Property, bool)

// bindingKind classifies a layout entry by the resource it binds.
type bindingKind int

const (
	bindingBuffer bindingKind = iota
	bindingTexture
	bindingStorageTexture
	bindingSampler
)

func classifyEntry(e wgpu.BindGroupLayoutEntry) bindingKind {
	switch {
	case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
		return bindingTexture
	case e.StorageTexture.Access != wgpu.StorageTextureAccessUndefined:
		return bindingStorageTexture
	case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
		return bindingSampler
	default:
		return bindingBuffer
	}
}

// varName returns the program variable declared at a slot by any stage of the pipeline.
func varName(p pipeline.Pipeline, group, binding int) string {
	for _, v := range p.Variants() {
		if name := v.BindGroupVarName(group, binding); name != "" {
			return name
		}
	}
	return ""
}

// groupCount returns the number of bind groups the pipeline layout holds.
func groupCount(p pipeline.Pipeline) int {
	n := 0
	for g := range p.LayoutDescriptors() {
		n = max(n, g+1)
	}
	return n
}

// BindMaterial resolves every slot of the pipeline and rebuilds a group's bind group only when
// the resources it references have changed. Buffer contents are written on every call.
func (b *wgpuRendererBackendImpl) BindMaterial(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, lookup propertyLookup) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	descriptors := p.LayoutDescriptors()
	for g := 0; g < groupCount(p); g++ {
		desc := descriptors[g]
		entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
		keyParts := make([]string, 0, len(desc.Entries))

		for _, e := range desc.Entries {
			slot := bind_group_provider.Binding{Group: g, Binding: int(e.Binding)}
			name := varName(p, g, int(e.Binding))
			entry := wgpu.BindGroupEntry{Binding: e.Binding}

			switch classifyEntry(e) {
			case bindingTexture, bindingStorageTexture:
				prop, ok := lookup(g, int(e.Binding), name)
				if !ok || prop.Kind != material.PropertyTexture || prop.Texture == nil {
					return fmt.Errorf("%w: %s %s", ErrUnboundProperty, name, slot)
				}
				wt, err := asWGPUTexture(prop.Texture)
				if err != nil {
					return err
				}
				entry.TextureView = wt.view
				keyParts = append(keyParts, fmt.Sprintf("t%d:%p", e.Binding, wt.view))

			case bindingSampler:
				s := provider.Sampler(slot)
				if s == nil {
					data := samplerStagingData(texture.Descriptor{})
					if prop, ok := lookup(g, int(e.Binding), strings.TrimSuffix(name, samplerSuffix)); ok && prop.Texture != nil {
						data = samplerStagingData(prop.Texture.Descriptor())
					}
					var err error
					if s, err = b.createSampler(provider.Label(), data); err != nil {
						return err
					}
					provider.SetSampler(slot, s)
				}
				entry.Sampler = s
				keyParts = append(keyParts, fmt.Sprintf("s%d:%p", e.Binding, s))

			case bindingBuffer:
				prop, ok := lookup(g, int(e.Binding), name)
				if !ok || prop.Kind == material.PropertyTexture {
					return fmt.Errorf("%w: %s %s", ErrUnboundProperty, name, slot)
				}
				data := prop.UniformBytes(e.Buffer.MinBindingSize)
				buf := provider.Buffer(slot)
				if buf == nil || provider.BufferSize(slot) != uint64(len(data)) {
					var err error
					if buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
						Label: provider.Label() + " " + name,
						Size:  uint64(len(data)),
						Usage: bufferUsage(e.Buffer.Type),
					}); err != nil {
						return err
					}
					provider.SetBuffer(slot, buf, uint64(len(data)))
				}
				b.queue.WriteBuffer(buf, 0, data)
				entry.Buffer = buf
				entry.Size = wgpu.WholeSize
				keyParts = append(keyParts, fmt.Sprintf("b%d:%p", e.Binding, buf))
			}
			entries = append(entries, entry)
		}

		key := strings.Join(keyParts, ",")
		if provider.BindGroup(g) != nil && provider.BindGroupKey(g) == key {
			continue
		}
		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s group %d", provider.Label(), g),
			Layout:  p.BindGroupLayout(g),
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("bind group %d: %w", g, err)
		}
		provider.SetBindGroup(g, bg, key)
	}
	return nil
}

func bufferUsage(t wgpu.BufferBindingType) wgpu.BufferUsage {
	switch t {
	case wgpu.BufferBindingTypeUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	}
}

// createSampler creates a sampler from fully specified modes; only the LOD clamp and anisotropy
// fall back to defaults.
func (b *wgpuRendererBackendImpl) createSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  data.AddressModeU,
		AddressModeV:  data.AddressModeV,
		AddressModeW:  data.AddressModeW,
		MagFilter:     data.MagFilter,
		MinFilter:     data.MinFilter,
		MipmapFilter:  data.MipmapFilter,
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
	})
}
