//go:build !nogpu

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNoGPU is returned when no usable GPU adapter is found.
	ErrNoGPU = errors.New("wgpu: no GPU adapter available")

	// ErrBadProvider is returned when a device provider does not expose
	// HAL handles.
	ErrBadProvider = errors.New("wgpu: device provider does not expose HAL types")
)

// deviceHandles bundles the HAL objects a backend runs on, plus whether
// it owns them. Shared devices (from a host application via a
// gpucontext provider) are never destroyed on Close.
type deviceHandles struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool
}

// openDevice creates a standalone device. This is the fallback path when
// no external device is shared via SetDeviceProvider (e.g. headless use
// without a host framework).
func openDevice() (*deviceHandles, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not compiled in", ErrNoGPU)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}

	// Prefer a real GPU over software adapters.
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	return &deviceHandles{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		owned:    true,
	}, nil
}

// handlesFromProvider extracts HAL handles from a host device provider.
// Besides the gpucontext.DeviceProvider methods, the provider must expose
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func handlesFromProvider(provider gpucontext.DeviceProvider) (*deviceHandles, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrBadProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrBadProvider)
	}
	return &deviceHandles{device: device, queue: queue, owned: false}, nil
}

// destroy releases owned handles. Shared handles are left alone since
// the host application owns them.
func (h *deviceHandles) destroy() {
	if !h.owned {
		return
	}
	if h.device != nil {
		h.device.Destroy()
		h.device = nil
	}
	if h.instance != nil {
		h.instance.Destroy()
		h.instance = nil
	}
}
