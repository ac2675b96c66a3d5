package vulkan

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkforge/engine/core"
)

// noCopy makes go vet's copylocks check reject copies of owned handles.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Kind describes one family of native handles: a name for logs and the
// call that releases a handle of that family.
type Kind[T comparable] struct {
	Name    string
	Destroy func(device *Device, handle T)
}

// Owned binds a native handle to the device that created it. At most one
// Owned may own a given live handle; ownership moves with Move and
// MoveFrom and is never duplicated. The zero handle value is the null
// sentinel.
//
// Owned values must not be copied. Always pass them by pointer.
type Owned[T comparable] struct {
	noCopy noCopy

	kind   Kind[T]
	device *Device
	handle T
	owns   bool
	id     uuid.UUID
}

// NewOwned returns an empty, non-owning instance bound to device.
func NewOwned[T comparable](device *Device, kind Kind[T]) *Owned[T] {
	return &Owned[T]{device: device, kind: kind}
}

// Adopt binds handle. When owns is true the instance becomes responsible
// for destroying it. Any handle owned before is destroyed first, unless
// it is the very handle being adopted.
func (o *Owned[T]) Adopt(handle T, owns bool) {
	var null T
	if o.owns && o.handle == handle {
		if !owns {
			o.untrack()
			o.owns = false
		}
		return
	}
	o.Destroy()

	o.handle = handle
	o.owns = owns && handle != null
	if o.owns {
		o.track()
	}
}

// Move transfers everything to a new instance and leaves o empty.
func (o *Owned[T]) Move() *Owned[T] {
	dst := &Owned[T]{
		kind:   o.kind,
		device: o.device,
		handle: o.handle,
		owns:   o.owns,
		id:     o.id,
	}
	o.reset()
	return dst
}

// MoveFrom destroys whatever o owns and then takes over src's handle,
// device and ownership. src is left empty.
func (o *Owned[T]) MoveFrom(src *Owned[T]) {
	if src == nil || src == o {
		return
	}
	o.Destroy()

	o.kind = src.kind
	o.device = src.device
	o.handle = src.handle
	o.owns = src.owns
	o.id = src.id
	src.reset()
}

// Destroy releases the native object if o owns it and leaves o empty.
// Calling it again, or on an instance that never owned anything, does
// nothing.
func (o *Owned[T]) Destroy() {
	if o.owns {
		core.LogDebug("destroying %s %s", o.kind.Name, handleString(o.handle))
		o.kind.Destroy(o.device, o.handle)
		o.untrack()
	}
	o.reset()
}

// Release gives up ownership without destroying and returns the handle.
// The caller becomes responsible for it.
func (o *Owned[T]) Release() T {
	h := o.handle
	if o.owns {
		o.untrack()
	}
	o.reset()
	return h
}

func (o *Owned[T]) Handle() T {
	return o.handle
}

func (o *Owned[T]) Device() *Device {
	return o.device
}

func (o *Owned[T]) Owns() bool {
	return o.owns
}

// IsEmpty reports whether no handle is bound.
func (o *Owned[T]) IsEmpty() bool {
	var null T
	return o.handle == null
}

func (o *Owned[T]) KindName() string {
	return o.kind.Name
}

// ID is the tracker id of an owned handle, uuid.Nil when untracked.
func (o *Owned[T]) ID() uuid.UUID {
	return o.id
}

func (o *Owned[T]) reset() {
	var null T
	o.handle = null
	o.owns = false
	o.id = uuid.Nil
}

func (o *Owned[T]) track() {
	if o.device == nil || o.device.tracker == nil {
		return
	}
	o.id = o.device.tracker.track(o.kind.Name, o.handle)
}

func (o *Owned[T]) untrack() {
	if o.device == nil || o.device.tracker == nil || o.id == uuid.Nil {
		return
	}
	o.device.tracker.untrack(o.id)
	o.id = uuid.Nil
}
