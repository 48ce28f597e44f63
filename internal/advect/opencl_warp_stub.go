//go:build !opencl

package advect

import "errors"

// OpenCLWarper is unavailable without the opencl build tag.
type OpenCLWarper struct{ CPUWarper }

// NewOpenCLWarper always fails in builds without OpenCL.
func NewOpenCLWarper(width, height int) (*OpenCLWarper, error) {
	return nil, errors.New("advect: built without OpenCL; use -tags opencl")
}

func (s *OpenCLWarper) DeviceName() string { return "" }
