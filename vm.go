// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

import (
	"io"
	"os"

	"github.com/questlang/quest/log"
)

// MaxDefaultCallDepth bounds the frame stack before a call fails with
// StackOverflow.
const MaxDefaultCallDepth = 4096

// VM owns the state of one interpreter: the stack of active frames
// (which `:N` references index into), the call-depth limit, the output
// stream and the logger. Execution is single threaded per VM.
type VM struct {
	frames   []*Frame
	maxDepth int
	stdout   io.Writer
	logger   *log.Helper
}

// NewVM builds a VM with default limits.
func NewVM() *VM {
	return &VM{
		maxDepth: MaxDefaultCallDepth,
		stdout:   os.Stdout,
		logger: log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout),
			log.FilterLevel(log.LevelError))),
	}
}

// SetLogger replaces the VM's logger.
func (vm *VM) SetLogger(logger log.Logger) {
	vm.logger = log.NewHelper(logger)
}

// SetMaxDepth overrides the call-depth limit.
func (vm *VM) SetMaxDepth(depth int) {
	if depth > 0 {
		vm.maxDepth = depth
	}
}

// SetStdout redirects print and dump output.
func (vm *VM) SetStdout(w io.Writer) {
	vm.stdout = w
}

// Stdout is where Kernel's print and dump write.
func (vm *VM) Stdout() io.Writer {
	if vm == nil || vm.stdout == nil {
		return os.Stdout
	}
	return vm.stdout
}

// Depth is the number of frames currently executing.
func (vm *VM) Depth() int {
	return len(vm.frames)
}

// RunBlock executes a compiled top-level block to completion.
func (vm *VM) RunBlock(block *Block, args Args) (Value, error) {
	frame, err := NewFrame(block, args)
	if err != nil {
		return nil, err
	}
	return frame.Run(vm)
}

// captureTrace snapshots the source locations of every active frame,
// outermost first.
func (vm *VM) captureTrace() []SourceLocation {
	trace := make([]SourceLocation, 0, len(vm.frames))
	for _, f := range vm.frames {
		trace = append(trace, f.inner.location)
	}
	return trace
}
