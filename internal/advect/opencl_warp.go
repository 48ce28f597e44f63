//go:build opencl

package advect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"

	"sandboxar/internal/raster"
)

// OpenCLWarper runs the backward warp on an OpenCL device.
type OpenCLWarper struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	srcBuf     *cl.MemObject
	duBuf      *cl.MemObject
	dvBuf      *cl.MemObject
	dstBuf     *cl.MemObject
	width      int
	height     int
	deviceName string
}

const warpKernelSource = `__kernel void warp_back(
    const int width,
    const int height,
    const float scale,
    __global const float* src,
    __global const float* du,
    __global const float* dv,
    __global float* dst)
{
    int idx = get_global_id(0);
    if (idx >= width * height) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    float sx = (float)x + scale * du[idx];
    float sy = (float)y + scale * dv[idx];
    float x0f = floor(sx);
    float y0f = floor(sy);
    float fx = sx - x0f;
    float fy = sy - y0f;
    int x0 = (int)x0f;
    int y0 = (int)y0f;
    float4 border = (float4)(1.0f, 1.0f, 1.0f, 0.0f);
    float4 acc = (float4)(0.0f);
    float weights[4] = {(1.0f - fx) * (1.0f - fy), fx * (1.0f - fy), (1.0f - fx) * fy, fx * fy};
    int tx[4] = {x0, x0 + 1, x0, x0 + 1};
    int ty[4] = {y0, y0, y0 + 1, y0 + 1};
    for (int t = 0; t < 4; t++) {
        float4 px = border;
        if (tx[t] >= 0 && ty[t] >= 0 && tx[t] < width && ty[t] < height) {
            px = vload4(ty[t] * width + tx[t], src);
        }
        acc += px * weights[t];
    }
    vstore4(acc, idx, dst);
}`

// NewOpenCLWarper compiles the warp kernel on the first GPU, falling back to
// the first CPU device.
func NewOpenCLWarper(width, height int) (*OpenCLWarper, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	var device *cl.Device
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				device = devices[0]
				break
			}
		}
		if device != nil {
			break
		}
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &OpenCLWarper{width: width, height: height, deviceName: device.Name()}
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{warpKernelSource}); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		s.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.kernel, err = s.program.CreateKernel("warp_back"); err != nil {
		s.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	n := width * height
	const f32 = 4
	if s.srcBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, n*channels*f32); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating source buffer: %w", err)
	}
	if s.duBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, n*f32); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating du buffer: %w", err)
	}
	if s.dvBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, n*f32); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating dv buffer: %w", err)
	}
	if s.dstBuf, err = s.context.CreateEmptyBuffer(cl.MemWriteOnly, n*channels*f32); err != nil {
		s.Close()
		return nil, fmt.Errorf("allocating destination buffer: %w", err)
	}
	if err := s.kernel.SetArgs(
		int32(width),
		int32(height),
		float32(DefaultScale),
		s.srcBuf,
		s.duBuf,
		s.dvBuf,
		s.dstBuf,
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	return s, nil
}

func (s *OpenCLWarper) Warp(dst, src *Buffer, du, dv *raster.Grid, scale float32) error {
	if err := checkWarpShapes(dst, src, du, dv); err != nil {
		return err
	}
	if src.W != s.width || src.H != s.height {
		return fmt.Errorf("advect: OpenCL warper sized %dx%d, buffer is %dx%d", s.width, s.height, src.W, src.H)
	}
	if err := s.kernel.SetArgFloat32(2, scale); err != nil {
		return fmt.Errorf("setting scale: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.srcBuf, false, 0, src.Pix, nil); err != nil {
		return fmt.Errorf("writing source buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.duBuf, false, 0, du.Pix, nil); err != nil {
		return fmt.Errorf("writing du buffer: %w", err)
	}
	if _, err := s.queue.EnqueueWriteBufferFloat32(s.dvBuf, false, 0, dv.Pix, nil); err != nil {
		return fmt.Errorf("writing dv buffer: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, []int{s.width * s.height}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.dstBuf, true, 0, dst.Pix, nil); err != nil {
		return fmt.Errorf("reading destination buffer: %w", err)
	}
	return nil
}

func (s *OpenCLWarper) Close() {
	for _, m := range []**cl.MemObject{&s.dstBuf, &s.dvBuf, &s.duBuf, &s.srcBuf} {
		if *m != nil {
			(*m).Release()
			*m = nil
		}
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

func (s *OpenCLWarper) DeviceName() string {
	return s.deviceName
}
