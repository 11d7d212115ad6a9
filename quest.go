// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package quest implements the core of the Quest language: the value
// representation, the attribute and parent protocol, the bytecode
// virtual machine, and the syntax-rewrite parser.
package quest

import (
	"fmt"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/questlang/quest/log"
)

// Quest drives one script through the whole pipeline:
// lexer -> rewriter -> compiler -> VM.
type Quest struct {
	src      []byte
	filename string
	data     mmap.MMap
	f        *os.File
	opts     *Options
	logger   *log.Helper
	vm       *VM

	// Block is the compiled top-level block, available after Parse.
	Block *Block
}

// Options for running a script.
type Options struct {

	// Maximum call depth before StackOverflow, by default
	// (MaxDefaultCallDepth).
	MaxCallDepth int

	// Where print and dump write, by default os.Stdout.
	Stdout io.Writer

	// A custom logger.
	Logger log.Logger
}

// New instantiates an engine with options given a script file name.
func New(name string, opts *Options) (*Quest, error) {

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of reading it into the heap.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	q := newQuest(data, name, opts)
	q.data = data
	q.f = f
	return q, nil
}

// NewBytes instantiates an engine given the script text in memory.
func NewBytes(src []byte, opts *Options) (*Quest, error) {
	return newQuest(src, "", opts), nil
}

func newQuest(src []byte, filename string, opts *Options) *Quest {
	q := &Quest{src: src, filename: filename}
	if opts != nil {
		q.opts = opts
	} else {
		q.opts = &Options{}
	}

	var logger log.Logger
	if q.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
		q.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		q.logger = log.NewHelper(q.opts.Logger)
	}

	q.vm = NewVM()
	if q.opts.MaxCallDepth != 0 {
		q.vm.SetMaxDepth(q.opts.MaxCallDepth)
	}
	if q.opts.Stdout != nil {
		q.vm.SetStdout(q.opts.Stdout)
	}
	if q.opts.Logger != nil {
		q.vm.SetLogger(q.opts.Logger)
	}
	return q
}

// VM exposes the engine's virtual machine.
func (q *Quest) VM() *VM {
	return q.vm
}

// Tokens runs the lexer and rewriter to completion and returns the
// rewritten token stream without compiling it.
func (q *Quest) Tokens() ([]Token, error) {
	parser := NewParser(string(q.src), q.filename)
	var tokens []Token
	for {
		tok, ok, err := parser.Take()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// Parse compiles the script into its top-level block.
func (q *Quest) Parse() error {
	parser := NewParser(string(q.src), q.filename)
	group, err := ParseProgram(parser)
	if err != nil {
		q.logger.Errorf("parsing failed: %v", err)
		return err
	}
	builder := NewBuilder(group.start)
	group.Compile(builder, builder.Scratch())
	q.Block = builder.Build()
	return nil
}

// Run parses if needed and executes the script, returning its result
// value.
func (q *Quest) Run() (Value, error) {
	if q.Block == nil {
		if err := q.Parse(); err != nil {
			return nil, err
		}
	}
	return q.vm.RunBlock(q.Block, Args{})
}

// Close unmaps and closes the underlying file, when one was mapped.
func (q *Quest) Close() error {
	var err error
	if q.data != nil {
		err = q.data.Unmap()
		q.data = nil
	}
	if q.f != nil {
		if cerr := q.f.Close(); err == nil {
			err = cerr
		}
		q.f = nil
	}
	return err
}

// ReportError renders an uncaught error the way the top-level driver
// does: the kind, the payload, and the stack trace.
func ReportError(w io.Writer, err error) {
	e, ok := err.(*Error)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	if e.Location != nil {
		fmt.Fprintf(w, "%s: %s: %s\n", e.Location, e.Kind, e.Error())
	} else {
		fmt.Fprintf(w, "%s: %s\n", e.Kind, e.Error())
	}
	if len(e.Trace) > 0 {
		fmt.Fprint(w, e.Stacktrace())
	}
}
