package oracle

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/polarysfoundation/polarys-bio/modules/metrics"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/sirupsen/logrus"
)

// Process is an Oracle backed by an executable that is spawned once per query,
// e.g. "java msg/MSG align 12".
type Process struct {
	command string
	args    []string
	opts    *option

	buildMu sync.Mutex
	built   bool
}

func NewProcess(command string, args []string, opts ...OptionFunc) *Process {
	return &Process{
		command: command,
		args:    append([]string(nil), args...),
		opts:    applyOpts(opts...),
	}
}

// FromParams builds a Process from the bio engine settings.
func FromParams(cfg params.BioEngine, opts ...OptionFunc) *Process {
	base := []OptionFunc{
		WithDir(cfg.WorkDir),
		WithTimeout(cfg.Timeout),
	}
	if cfg.BuildCommand != "" {
		base = append(base, WithBuild(cfg.BuildCommand, cfg.BuildArgs...))
	}
	return NewProcess(cfg.Command, cfg.Args, append(base, opts...)...)
}

// Build runs the build command once. A failed build is retried on the next call.
func (p *Process) Build(ctx context.Context) error {
	if p.opts.buildCmd == "" {
		return nil
	}

	p.buildMu.Lock()
	defer p.buildMu.Unlock()

	if p.built {
		return nil
	}

	p.opts.log.WithFields(logrus.Fields{
		"command": p.opts.buildCmd,
		"args":    p.opts.buildArgs,
	}).Info("building oracle")

	start := time.Now()
	_, err := p.exec(ctx, OpBuild, p.opts.buildCmd, p.opts.buildArgs...)
	metrics.ObserveOracleCall(OpBuild, start, err)
	if err != nil {
		// a failed compile leaves nothing to query
		var oerr *Error
		if errors.As(err, &oerr) && errors.Is(err, ErrFailed) {
			return &Error{Op: OpBuild, Output: oerr.Output, Err: ErrUnavailable}
		}
		return err
	}

	p.built = true
	return nil
}

func (p *Process) Base(ctx context.Context) (int64, error) {
	var n int64
	if _, err := p.query(ctx, OpBase, func(out []byte) (ok bool) {
		n, ok = parseInt(out)
		return ok
	}); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *Process) Widths(ctx context.Context) ([]int, error) {
	var widths []int
	if _, err := p.query(ctx, OpWidths, func(out []byte) (ok bool) {
		widths, ok = parseWidths(out)
		return ok
	}); err != nil {
		return nil, err
	}
	return widths, nil
}

// Align returns the oracle output unmodified; the exact text is what Score rates.
func (p *Process) Align(ctx context.Context, width int) (string, error) {
	out, err := p.query(ctx, OpAlign, func(out []byte) bool {
		return strings.TrimSpace(string(out)) != ""
	}, strconv.Itoa(width))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *Process) Score(ctx context.Context, alignment string) (int64, error) {
	var n int64
	if _, err := p.query(ctx, OpScore, func(out []byte) (ok bool) {
		n, ok = parseInt(out)
		return ok
	}, alignment); err != nil {
		return 0, err
	}
	return n, nil
}

// query runs one oracle subcommand. Output rejected by accept is a protocol
// violation and is recorded as a failed call.
func (p *Process) query(ctx context.Context, op string, accept func(out []byte) bool, args ...string) (out []byte, err error) {
	argv := make([]string, 0, len(p.args)+1+len(args))
	argv = append(argv, p.args...)
	argv = append(argv, op)
	argv = append(argv, args...)

	start := time.Now()
	defer func() { metrics.ObserveOracleCall(op, start, err) }()

	out, err = p.exec(ctx, op, p.command, argv...)
	if err != nil {
		return nil, err
	}
	if !accept(out) {
		return nil, &Error{Op: op, Output: string(out), Err: ErrProtocol}
	}
	return out, nil
}

func (p *Process) exec(ctx context.Context, op, name string, args ...string) ([]byte, error) {
	if p.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.timeout)
		defer cancel()
	}

	p.opts.log.WithFields(logrus.Fields{"op": op, "command": name}).Debug("oracle call")

	out, err := p.opts.runner.Run(ctx, p.opts.dir, name, args...)
	if err == nil {
		return out, nil
	}

	var exitErr *ExitError
	switch {
	case ctx.Err() != nil:
		return nil, &Error{Op: op, Err: errors.Join(ErrUnavailable, ctx.Err())}
	case errors.As(err, &exitErr):
		return nil, &Error{Op: op, Output: strings.TrimSpace(string(exitErr.Stderr)), Err: ErrFailed}
	default:
		return nil, &Error{Op: op, Output: err.Error(), Err: ErrUnavailable}
	}
}
