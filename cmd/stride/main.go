// Package main provides the stride CLI, which applies view operations to a
// fresh view and prints the resulting geometry after each step.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/stride/internal/kernel"
	"github.com/born-ml/stride/internal/storage"
	"github.com/born-ml/stride/internal/storage/webgpu"
	"github.com/born-ml/stride/internal/view"
)

const version = "v0.1.0-dev"

const usage = `Usage: stride [flags] <op> <args> [<op> <args>...]

Operations:
  resize    <sizes>[:<strides>]   e.g. resize 4,3 or resize 4,3:3,1
  squeeze   <dim>
  unsqueeze <dim>
  narrow    <dim>,<first>,<size>
  select    <dim>,<index>
  transpose <dim1>,<dim2>
  fill      <start>               float64 views only: element i becomes start+i
  version                          show version

Flags:
`

func main() {
	klog.InitFlags(nil)
	dtype := flag.String("dtype", "float32", "scalar type of the view")
	device := flag.String("device", "CPU", "device tag of the view")
	pool := flag.Bool("pool", false, "serve storage through a pooled allocator")
	values := flag.Bool("values", false, "print the elements of 1-d and 2-d float64 views")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if args[0] == "version" {
		fmt.Printf("stride %s\n", version)
		return
	}

	cfg, cleanup, err := buildConfig(*dtype, *device, *pool)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	err = run(os.Stdout, cfg, *values, args)
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig turns the flags into a view configuration. The WebGPU device
// uses GPU buffers when an adapter is available and host memory otherwise.
// The returned cleanup releases whatever the configuration acquired.
func buildConfig(dtype, device string, pool bool) (view.Config, func(), error) {
	cfg := view.DefaultConfig()
	cleanup := func() {}
	st, err := storage.ParseScalarType(dtype)
	if err != nil {
		return cfg, cleanup, err
	}
	dev, err := storage.ParseDevice(device)
	if err != nil {
		return cfg, cleanup, err
	}
	cfg.ScalarType = st
	cfg.Device = dev

	if dev == storage.WebGPU {
		gpu, err := webgpu.New()
		if err != nil {
			klog.Warningf("%v, falling back to host memory", err)
		} else {
			klog.V(1).Info("serving storage from WebGPU buffers")
			cfg.Allocator = gpu
			cleanup = gpu.Release
		}
	}
	if pool {
		pooled := storage.NewPooledAllocator(cfg.Allocator, storage.DefaultPoolConfig())
		cfg.Allocator = pooled
		release := cleanup
		cleanup = func() {
			if err := pooled.Clear(); err != nil {
				klog.Warningf("clear pool: %v", err)
			}
			release()
		}
	}
	return cfg, cleanup, nil
}

// run applies the operations in args to one view and prints it after each.
// With values set, 1-d and 2-d float64 views are also printed element-wise.
func run(w io.Writer, cfg view.Config, values bool, args []string) error {
	v := view.New(cfg)
	defer v.Release()

	if len(args)%2 != 0 {
		return errors.Errorf("operation %q is missing its argument", args[len(args)-1])
	}
	for i := 0; i < len(args); i += 2 {
		op, arg := args[i], args[i+1]
		if err := apply(v, op, arg); err != nil {
			return errors.Wrapf(err, "%s %s", op, arg)
		}
		capacity := 0
		if st := v.Storage(); st != nil {
			capacity = st.Capacity()
		}
		fmt.Fprintf(w, "%-9s %-12s -> %s contiguous=%t elements=%d capacity=%d\n",
			op, arg, v, v.IsContiguous(), v.NumElements(), capacity)
		if values {
			printValues(w, v)
		}
	}
	return nil
}

// printValues writes the elements of v as a gonum matrix or vector.
// Views gonum cannot describe are reported instead.
func printValues(w io.Writer, v *view.View) {
	if v.ScalarType() != storage.Float64 {
		return
	}
	var m mat.Matrix
	var err error
	switch v.NDimension() {
	case 1:
		m, err = kernel.Float64Vector(v)
	case 2:
		m, err = kernel.Float64Matrix(v)
	default:
		return
	}
	if err != nil {
		fmt.Fprintf(w, "  values: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  %v\n", mat.Formatted(m, mat.Prefix("  ")))
}

// fill sets element i of a 1-d or 2-d float64 view, in row-major order, to start+i.
func fill(v *view.View, start float64) error {
	switch v.NDimension() {
	case 1:
		vec, err := kernel.Float64Vector(v)
		if err != nil {
			return err
		}
		for i := 0; i < vec.Len(); i++ {
			vec.SetVec(i, start+float64(i))
		}
		return nil
	case 2:
		m, err := kernel.Float64Matrix(v)
		if err != nil {
			return err
		}
		rows, cols := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.Set(i, j, start+float64(i*cols+j))
			}
		}
		return nil
	default:
		return errors.Errorf("fill needs a 1-d or 2-d view, got %d-d", v.NDimension())
	}
}

func apply(v *view.View, op, arg string) error {
	switch op {
	case "resize":
		sizeArg, strideArg, hasStrides := strings.Cut(arg, ":")
		sizes, err := parseInts(sizeArg)
		if err != nil {
			return err
		}
		var strides []int
		if hasStrides {
			if strides, err = parseInts(strideArg); err != nil {
				return err
			}
		}
		return v.ResizeNd(sizes, strides)
	case "squeeze":
		dim, err := parseN(arg, 1)
		if err != nil {
			return err
		}
		return v.Squeeze1d(nil, dim[0])
	case "unsqueeze":
		dim, err := parseN(arg, 1)
		if err != nil {
			return err
		}
		return v.Unsqueeze1d(nil, dim[0])
	case "narrow":
		p, err := parseN(arg, 3)
		if err != nil {
			return err
		}
		return v.Narrow(nil, p[0], p[1], p[2])
	case "select":
		p, err := parseN(arg, 2)
		if err != nil {
			return err
		}
		return v.Select(nil, p[0], p[1])
	case "transpose":
		p, err := parseN(arg, 2)
		if err != nil {
			return err
		}
		return v.Transpose(nil, p[0], p[1])
	case "fill":
		start, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return errors.Wrapf(err, "parse %q", arg)
		}
		return fill(v, start)
	default:
		return errors.Errorf("unknown operation %q", op)
	}
}

func parseInts(s string) ([]int, error) {
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "parse %q", p)
		}
		out[i] = n
	}
	return out, nil
}

func parseN(s string, n int) ([]int, error) {
	out, err := parseInts(s)
	if err != nil {
		return nil, err
	}
	if len(out) != n {
		return nil, errors.Errorf("expected %d comma-separated integers, got %q", n, s)
	}
	return out, nil
}
