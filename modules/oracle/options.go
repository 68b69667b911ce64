package oracle

import (
	"time"

	"github.com/sirupsen/logrus"
)

type option struct {
	log       *logrus.Logger
	runner    Runner
	dir       string
	timeout   time.Duration
	buildCmd  string
	buildArgs []string
}

func applyOpts(options ...OptionFunc) *option {
	opts := &option{
		log:    logrus.StandardLogger(),
		runner: execRunner{},
	}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}

type OptionFunc func(*option)

func WithLogger(log *logrus.Logger) OptionFunc {
	return func(o *option) {
		o.log = log
	}
}

// WithRunner replaces the os/exec runner, mostly for tests.
func WithRunner(r Runner) OptionFunc {
	return func(o *option) {
		o.runner = r
	}
}

// WithDir sets the working directory of every oracle invocation.
func WithDir(dir string) OptionFunc {
	return func(o *option) {
		o.dir = dir
	}
}

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(d time.Duration) OptionFunc {
	return func(o *option) {
		o.timeout = d
	}
}

// WithBuild sets the command Build runs. Without it Build is a no-op.
func WithBuild(name string, args ...string) OptionFunc {
	return func(o *option) {
		o.buildCmd = name
		o.buildArgs = args
	}
}
