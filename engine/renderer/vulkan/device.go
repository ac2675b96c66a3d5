package vulkan

import (
	vk "github.com/goki/vulkan"
)

// Device is a non-owning reference to a logical device together with the
// driver used to reach it. Resources keep a pointer to it so they can
// destroy themselves; they never mutate it.
type Device struct {
	Handle  vk.Device
	Driver  Driver
	tracker *Tracker
}

type DeviceOption func(*Device)

// WithDriver replaces the goki/vulkan driver.
func WithDriver(driver Driver) DeviceOption {
	return func(d *Device) {
		d.Driver = driver
	}
}

// WithTracker records every owned handle created on the device.
func WithTracker(tracker *Tracker) DeviceOption {
	return func(d *Device) {
		d.tracker = tracker
	}
}

func NewDevice(handle vk.Device, options ...DeviceOption) *Device {
	d := &Device{Handle: handle}
	for _, o := range options {
		o(d)
	}
	if d.Driver == nil {
		d.Driver = NewVulkanDriver(nil)
	}
	return d
}

func (d *Device) Tracker() *Tracker {
	return d.tracker
}
