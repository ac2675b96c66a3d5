package vulkan

import (
	"fmt"
	"path/filepath"
	"runtime"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkforge/engine/core"
)

// ResourceCreationError is returned whenever a native create call does
// not produce a handle. It carries the native result and the location of
// the creating call. NullHandle is set when the driver reported
// VK_SUCCESS without a handle; Code is VK_ERROR_UNKNOWN in that case.
type ResourceCreationError struct {
	Op         string
	Code       vk.Result
	NullHandle bool
	File       string
	Line       int
}

func (e *ResourceCreationError) Error() string {
	if e.NullHandle {
		return fmt.Sprintf("%s returned no handle (%s:%d)", e.Op, e.File, e.Line)
	}
	return fmt.Sprintf("%s failed with %s (%s:%d)", e.Op, VulkanResultString(e.Code, false), e.File, e.Line)
}

// Is lets errors.Is match core.ErrResourceCreation, and core.ErrUnknown
// for a missing handle.
func (e *ResourceCreationError) Is(target error) bool {
	switch target {
	case core.ErrResourceCreation:
		return true
	case core.ErrUnknown:
		return e.NullHandle
	}
	return false
}

// checkCreated turns the outcome of a native create call into an error.
// Anything but VK_SUCCESS with a non-null handle is a failure; a handle
// handed out alongside a non-success code is destroyed so it cannot leak.
// The error records the location of the function calling checkCreated.
func checkCreated[T comparable](device *Device, kind Kind[T], op string, result vk.Result, handle T) *ResourceCreationError {
	var null T
	if result == vk.Success && handle != null {
		return nil
	}

	err := &ResourceCreationError{Op: op, Code: result}
	if _, file, line, ok := runtime.Caller(1); ok {
		err.File = filepath.Base(file)
		err.Line = line
	}

	switch {
	case result == vk.Success:
		err.NullHandle = true
		err.Code = vk.ErrorUnknown
		core.LogError("%s reported success without a handle", op)
	case VulkanResultIsSuccess(result):
		core.LogWarn("%s returned status %s, treated as failure", op, VulkanResultString(result, true))
	default:
		core.LogError("%s failed with %s", op, VulkanResultString(result, true))
	}

	if handle != null {
		kind.Destroy(device, handle)
	}
	return err
}
