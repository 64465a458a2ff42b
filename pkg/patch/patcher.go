package patch

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

// Default tracer name for reconcile passes.
const defaultTracerName = "github.com/vango-dev/reconcile/pkg/patch"

// Patcher applies virtual trees to a dom.Host.
//
// A Patcher holds no tree state between passes; the caller keeps the
// previous tree and hands it back on the next call. Passes must not run
// concurrently against the same live tree.
type Patcher struct {
	host    dom.Host
	props   dom.PropertyHost
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	name    string
	hook    func(vdom.Command)
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records commands, passes and host failures.
func WithMetrics(m *Metrics) Option {
	return func(p *Patcher) {
		p.metrics = m
	}
}

// WithTracer sets the tracer used for the reconcile.pass span.
// Defaults to the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Patcher) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// WithName names the document in logs and spans.
func WithName(name string) Option {
	return func(p *Patcher) {
		p.name = name
	}
}

// WithCommandHook calls fn with every child-list command, nested ones
// included, just before it is applied.
func WithCommandHook(fn func(vdom.Command)) Option {
	return func(p *Patcher) {
		p.hook = fn
	}
}

// New returns a Patcher writing to host. If host also implements
// dom.PropertyHost, live form state and focus are kept in sync.
func New(host dom.Host, opts ...Option) *Patcher {
	p := &Patcher{
		host:   host,
		logger: slog.Default(),
		tracer: otel.Tracer(defaultTracerName),
	}
	p.props, _ = host.(dom.PropertyHost)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reconcile brings the live tree under mount from old to new and returns
// the live node now behind new, if any. hint is the live node that follows
// the tree in mount; nil means the tree is the last child.
//
// new must be fully virtual. Failed attribute, text, listener and property
// calls are collected and the pass continues; a failed create, insert or
// remove stops the pass. All failures are returned joined.
func (p *Patcher) Reconcile(ctx context.Context, old, new *vdom.VNode, mount, hint dom.Node) (dom.Node, error) {
	if new.IsAttached() {
		panic(errors.Invariant("E301", "new tree "+new.String()+" already holds live nodes"))
	}

	_, span := p.tracer.Start(ctx, "reconcile.pass",
		trace.WithAttributes(
			attribute.String("reconcile.document", p.name),
			attribute.String("reconcile.old", old.String()),
			attribute.String("reconcile.new", new.String()),
		),
	)
	defer span.End()

	start := time.Now()
	ps := p.newPass()
	err := ps.result(ps.patch(old, new, mount, hint))
	duration := time.Since(start)
	p.metrics.recordPass(duration)

	span.SetAttributes(
		attribute.Int("reconcile.commands", ps.total),
		attribute.Int("reconcile.errors", ps.failures),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	p.logger.Debug("reconcile pass",
		"document", p.name,
		"commands", ps.total,
		"counts", ps.countsAttr(),
		"errors", ps.failures,
		"duration", duration,
	)
	return new.Handle(), err
}

// Mount attaches new under mount for the first time.
func (p *Patcher) Mount(ctx context.Context, new *vdom.VNode, mount dom.Node) (dom.Node, error) {
	return p.Reconcile(ctx, vdom.Empty(), new, mount, nil)
}

// Patch runs one pass from old to new without tracing it. next is the
// live node new should be inserted before if old is Empty.
func (p *Patcher) Patch(old, new *vdom.VNode, parent, next dom.Node) (dom.Node, error) {
	ps := p.newPass()
	err := ps.result(ps.patch(old, new, parent, next))
	return new.Handle(), err
}

// PatchChildren reconciles the children of the live node parent.
func (p *Patcher) PatchChildren(parent dom.Node, old, new []*vdom.VNode) error {
	ps := p.newPass()
	return ps.result(ps.patchChildren(parent, old, new))
}

// pass is the state of one reconciliation pass.
type pass struct {
	*Patcher

	errs     []error
	failures int
	total    int
	counts   map[vdom.CommandOp]int
}

func (p *Patcher) newPass() *pass {
	return &pass{Patcher: p, counts: make(map[vdom.CommandOp]int)}
}

// fail turns a host error into a platform error, logs and counts it.
func (ps *pass) fail(code, op string, err error) error {
	ps.failures++
	ps.metrics.recordPlatformError(op)
	ps.logger.Warn("host call failed",
		"document", ps.name,
		"op", op,
		"code", code,
		"error", err,
	)
	return errors.Platform(code, op, err)
}

// soft records a failure that does not stop the pass.
func (ps *pass) soft(code, op string, err error) {
	if err == nil {
		return
	}
	ps.errs = append(ps.errs, ps.fail(code, op, err))
}

func (ps *pass) result(err error) error {
	if err != nil {
		ps.errs = append(ps.errs, err)
	}
	return errors.Join(ps.errs...)
}

func (ps *pass) countsAttr() slog.Value {
	attrs := make([]slog.Attr, 0, len(ps.counts))
	for op := vdom.CmdAppendEl; op <= vdom.CmdRemoveText; op++ {
		if n := ps.counts[op]; n > 0 {
			attrs = append(attrs, slog.Int(op.String(), n))
		}
	}
	return slog.GroupValue(attrs...)
}

// patch handles one node pair at the top of a pass. A NoChange new node
// takes over old and its live nodes; old is left Empty.
func (ps *pass) patch(old, new *vdom.VNode, parent, next dom.Node) error {
	switch {
	case old.IsNoChange():
		panic(errors.Invariant("E306", "previous tree is a NoChange marker"))
	case new.IsNoChange():
		*new, *old = *old, vdom.VNode{Kind: vdom.KindEmpty}
		return nil
	case old.IsEmpty() && new.IsEmpty():
		return nil
	case old.IsEmpty():
		return ps.attach(new, parent, next)
	case new.IsEmpty():
		return ps.detach(old, parent)
	case old.Kind == vdom.KindElement && new.Kind == vdom.KindElement:
		if vdom.CanPatch(old.El, new.El) {
			return ps.patchEl(old.El, new.El)
		}
		return ps.replace(old, new, parent)
	case old.Kind == vdom.KindText && new.Kind == vdom.KindText:
		ps.patchText(old.Text, new.Text)
		return nil
	default:
		return ps.replace(old, new, parent)
	}
}

// patchChildren drives the patch generator over two child lists of parent.
// Commands are applied as they are produced; the generator reads live
// handles that earlier commands have moved.
func (ps *pass) patchChildren(parent dom.Node, old, new []*vdom.VNode) error {
	for _, child := range new {
		if child.IsNoChange() {
			panic(errors.Invariant("E306", "NoChange marker inside a child list"))
		}
	}
	for cmd := range vdom.NewPatchGen(old, new).All() {
		if err := ps.apply(parent, cmd); err != nil {
			return err
		}
	}
	return nil
}

func (ps *pass) apply(parent dom.Node, cmd vdom.Command) error {
	ps.total++
	ps.counts[cmd.Op]++
	ps.metrics.recordCommand(cmd.Op)
	if ps.hook != nil {
		ps.hook(cmd)
	}

	switch cmd.Op {
	case vdom.CmdAppendEl:
		return ps.attachEl(cmd.NewEl, parent, nil)
	case vdom.CmdAppendText:
		return ps.attachText(cmd.NewText, parent, nil)
	case vdom.CmdInsertEl:
		return ps.attachEl(cmd.NewEl, parent, cmd.Before)
	case vdom.CmdInsertText:
		return ps.attachText(cmd.NewText, parent, cmd.Before)
	case vdom.CmdPatchEl:
		return ps.patchEl(cmd.OldEl, cmd.NewEl)
	case vdom.CmdPatchText:
		ps.patchText(cmd.OldText, cmd.NewText)
		return nil
	case vdom.CmdReplaceElByEl:
		return ps.replace(cmd.OldEl.Node(), cmd.NewEl.Node(), parent)
	case vdom.CmdReplaceElByText:
		return ps.replace(cmd.OldEl.Node(), cmd.NewText.Node(), parent)
	case vdom.CmdReplaceTextByEl:
		return ps.replace(cmd.OldText.Node(), cmd.NewEl.Node(), parent)
	case vdom.CmdRemoveEl:
		return ps.detach(cmd.OldEl.Node(), parent)
	case vdom.CmdRemoveText:
		return ps.detach(cmd.OldText.Node(), parent)
	}
	panic(errors.Invariant("E304", "unknown command "+cmd.Op.String()))
}
