// Package manager owns the process-wide set of builders, caches and
// evaluation contexts that back a single decision-diagram engine instance:
// the SDD and homomorphism unique tables, the operation cache, the scratch
// arena and the evaluation context threading them together. It is the
// engine's equivalent of the teacher's service-layer composition root,
// translated from "one profiling session" to "one engine instance".
package manager

import (
	"math/big"
	"sync/atomic"

	"github.com/hsdd-project/hsdd/hom"
	"github.com/hsdd-project/hsdd/internal/cache"
	"github.com/hsdd-project/hsdd/internal/unique"
	"github.com/hsdd-project/hsdd/order"
	"github.com/hsdd-project/hsdd/pkg/config"
	hsdderrors "github.com/hsdd-project/hsdd/pkg/errors"
	"github.com/hsdd-project/hsdd/pkg/utils"
	"github.com/hsdd-project/hsdd/sdd"
)

// active enforces the single-instance contract: only one Manager may exist
// at a time, mirroring a scoped acquisition with guaranteed release (the
// flag is cleared by Close) in place of a constructor-side mutex.
var active atomic.Bool

// Manager is the composition root tying together the SDD builder, the
// homomorphism builder, their shared operation/evaluation contexts and a
// logger. Construct with New; release with Close so a later New can
// succeed.
type Manager struct {
	cfg *config.Config
	log utils.Logger

	sddBuilder *sdd.Builder
	homBuilder *hom.Builder
	opCtx      *sdd.OpContext
	evalCtx    *hom.EvalContext
	counter    *sdd.Counter

	closed bool
}

// New builds a Manager from cfg, sized per cfg.SDD/cfg.Hom. Fails with
// hsdderrors.ErrDoubleInit if another Manager is already active; the caller
// must Close it first. A nil logger defaults to utils.NullLogger.
func New(cfg *config.Config, log utils.Logger) (*Manager, error) {
	if !active.CompareAndSwap(false, true) {
		return nil, hsdderrors.ErrDoubleInit
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = &utils.NullLogger{}
	}

	sb := sdd.NewBuilder(cfg.SDD.UniqueTableSize)
	opCtx := sdd.NewOpContext(sb, cfg.SDD.SumCacheSize, cfg.SDD.IntersectionCacheSize, cfg.SDD.DifferenceCacheSize, cfg.SDD.ArenaSize)
	hb := hom.NewBuilder(sb, cfg.Hom.UniqueTableSize)
	evalCtx := hom.NewEvalContext(hb, opCtx, cfg.Hom.CacheSize)

	log.Info("manager initialized: sdd_table=%d hom_table=%d sum_cache=%d inter_cache=%d diff_cache=%d hom_cache=%d arena=%d",
		cfg.SDD.UniqueTableSize, cfg.Hom.UniqueTableSize, cfg.SDD.SumCacheSize,
		cfg.SDD.IntersectionCacheSize, cfg.SDD.DifferenceCacheSize, cfg.Hom.CacheSize, cfg.SDD.ArenaSize)

	return &Manager{
		cfg:        cfg,
		log:        log,
		sddBuilder: sb,
		homBuilder: hb,
		opCtx:      opCtx,
		evalCtx:    evalCtx,
		counter:    sdd.NewCounter(),
	}, nil
}

// Close releases the singleton slot so a later New can succeed. Safe to
// call more than once.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	active.Store(false)
	m.log.Info("manager closed")
	return nil
}

// SDDBuilder returns the SDD builder owned by this manager.
func (m *Manager) SDDBuilder() *sdd.Builder { return m.sddBuilder }

// HomBuilder returns the homomorphism builder owned by this manager.
func (m *Manager) HomBuilder() *hom.Builder { return m.homBuilder }

// OpContext returns the SDD operation context (union/intersection/
// difference caches plus the scratch arena) owned by this manager.
func (m *Manager) OpContext() *sdd.OpContext { return m.opCtx }

// EvalContext returns the homomorphism evaluation context owned by this
// manager.
func (m *Manager) EvalContext() *hom.EvalContext { return m.evalCtx }

// Logger returns the logger this manager was configured with.
func (m *Manager) Logger() utils.Logger { return m.log }

// Eval applies h to x at order position o, logging the call at debug level.
// A thin, logged wrapper over hom.Apply for callers that only ever touch
// one Manager and don't want to thread the EvalContext through themselves.
func (m *Manager) Eval(o *order.Node, h *hom.Hom, x *sdd.SDD) (*sdd.SDD, error) {
	m.log.Debug("eval: order=%s hom_seq=%d input_seq=%d", o.ID(), h.Seq(), x.Seq())
	out, err := hom.Apply(m.evalCtx, o, h, x)
	if err != nil {
		m.log.Warn("eval failed: %v", err)
		return nil, err
	}
	return out, nil
}

// Rewrite turns h into its saturation schedule at order position o, logging
// the decision at debug level.
func (m *Manager) Rewrite(h *hom.Hom, o *order.Node) (*hom.Hom, error) {
	rewritten, err := hom.Rewrite(m.homBuilder, h, o)
	if err != nil {
		return nil, err
	}
	if rewritten != h {
		m.log.Debug("rewrite: order=%s produced a saturation schedule", o.ID())
	}
	return rewritten, nil
}

// Count returns the number of tuples n represents, memoized across calls on
// this manager's Counter.
func (m *Manager) Count(n *sdd.SDD) *big.Int { return m.counter.Count(n) }

// Stats aggregates diagnostics across every table and cache this manager
// owns, surfaced by the CLI's stats subcommand.
type Stats struct {
	SDDTable   unique.Stats
	HomTable   unique.Stats
	SumCache   cache.Stats
	InterCache cache.Stats
	DiffCache  cache.Stats
	EvalCache  cache.Stats
}

// Stats returns a snapshot of every table/cache this manager owns.
func (m *Manager) Stats() Stats {
	sum, inter, diff := m.opCtx.CacheStats()
	return Stats{
		SDDTable:   m.sddBuilder.Stats(),
		HomTable:   m.homBuilder.Stats(),
		SumCache:   sum,
		InterCache: inter,
		DiffCache:  diff,
		EvalCache:  m.evalCtx.CacheStats(),
	}
}
