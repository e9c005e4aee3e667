package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/mehdihou95/middleware-mapper/internal/ingest"
	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/record"
	"github.com/mehdihou95/middleware-mapper/internal/result"
	"github.com/mehdihou95/middleware-mapper/internal/xpath"
)

// Processor turns parsed tree documents into persisted header and line
// records, driven by externally configured mapping rules. It holds no
// cross-document mutable state and is safe to call concurrently, one call
// per in-flight document.
type Processor struct {
	store    Store
	rules    RuleSource
	recorder ResultRecorder
	registry *Registry
	log      *logger.Logger
	timings  *Timings
}

// NewProcessor creates a processor wired to its external boundaries
func NewProcessor(store Store, rules RuleSource, recorder ResultRecorder, registry *Registry, log *logger.Logger) *Processor {
	return &Processor{
		store:    store,
		rules:    rules,
		recorder: recorder,
		registry: registry,
		log:      log,
		timings:  NewTimings(),
	}
}

// Timings returns the processor's stage timing totals
func (p *Processor) Timings() *Timings {
	return p.timings
}

// ProcessDocument is the single synchronous entry point: it creates a
// processing result, runs the document through the state machine, and
// returns the terminal result. Errors never escape as raw errors; callers
// see only the terminal status plus the trail.
func (p *Processor) ProcessDocument(ctx context.Context, doc *ingest.Document, iface mapping.Interface, clientID string) *result.ProcessingResult {
	res := result.New(doc.FileName, clientID, iface)
	if err := p.recorder.Record(ctx, res); err != nil {
		p.log.Errorf("record processing start: %v", err)
	}
	p.Run(ctx, res, doc, iface, clientID)
	return res
}

// Run executes the state machine against an already-recorded result. The
// async worker uses it directly so the caller keeps the result ID it handed
// out at submission time.
func (p *Processor) Run(ctx context.Context, res *result.ProcessingResult, doc *ingest.Document, iface mapping.Interface, clientID string) {
	strat, ok := p.registry.Get(iface.DocType)
	if !ok {
		p.fail(ctx, res, fmt.Sprintf("no strategy registered for document type %q", iface.DocType))
		return
	}

	ev := xpath.NewEvaluator(doc.Root)

	// STARTED -> HEADER_BOUND
	header, ok := p.bindHeader(ctx, res, ev, doc.Root, strat, iface, clientID)
	if !ok {
		p.fail(ctx, res, "")
		return
	}

	// HEADER_BOUND -> HEADER_PERSISTED
	start := time.Now()
	headerID, err := p.store.PersistHeader(ctx, header)
	p.timings.ObservePersist(time.Since(start))
	if err != nil {
		p.fail(ctx, res, fmt.Sprintf("persist header: %v", err))
		return
	}
	header.SetID(headerID)
	res.HeaderID = headerID

	// HEADER_PERSISTED -> LINES_BOUND
	lines, ok := p.bindLines(ctx, res, ev, strat, iface, headerID)
	if !ok {
		p.fail(ctx, res, "")
		return
	}

	// LINES_BOUND -> LINES_PERSISTED
	if len(lines) > 0 {
		start = time.Now()
		err = p.store.PersistLines(ctx, lines)
		p.timings.ObservePersist(time.Since(start))
		if err != nil {
			p.fail(ctx, res, fmt.Sprintf("persist lines: %v", err))
			return
		}
	} else if res.LinesFailed > 0 {
		// Every line failed binding; a document whose line items were all
		// rejected is not a success
		p.fail(ctx, res, "")
		return
	}

	res.LinesPersisted = len(lines)
	res.MarkSuccess()
	if err := p.recorder.Record(ctx, res); err != nil {
		p.log.Errorf("record processing result %s: %v", res.ID, err)
	}

	p.log.Infof("processed %s: interface=%s client=%s header=%s lines=%d failed=%d",
		doc.FileName, iface.ID, clientID, headerID, len(lines), res.LinesFailed)
}

// bindHeader applies every active header rule to a freshly constructed
// header record. A failure on a required rule aborts binding; failures on
// optional rules are appended to the trail and skipped.
func (p *Processor) bindHeader(ctx context.Context, res *result.ProcessingResult, ev *xpath.Evaluator, root *xmlquery.Node, strat Strategy, iface mapping.Interface, clientID string) (record.Header, bool) {
	all, err := p.rules.ResolveMappingRules(ctx, iface.ID, strat.HeaderTable())
	if err != nil {
		res.AppendError(fmt.Sprintf("resolve header rules: %v", err))
		return nil, false
	}

	header := strat.NewHeader(clientID)
	for _, rule := range mapping.ActiveRules(all, strat.HeaderTable()) {
		raw := ""
		if xpath.Normalize(rule.SourcePath) != "" {
			start := time.Now()
			value, _, err := ev.Evaluate(root, rule.SourcePath)
			p.timings.ObserveEvaluate(time.Since(start))
			if err != nil {
				res.AppendError(fmt.Sprintf("header field %s: %v", rule.TargetField, err))
				if rule.Required {
					return nil, false
				}
				continue
			}
			raw = value
		}

		start := time.Now()
		err := record.Bind(header, rule, raw)
		p.timings.ObserveBind(time.Since(start))
		if err != nil {
			res.AppendError(fmt.Sprintf("header: %v", err))
			if rule.Required {
				return nil, false
			}
		}
	}
	return header, true
}

// bindLines resolves line groups, locates their node sequences, and binds
// one line record per node with per-line failure isolation. Nodes matched
// by more than one group pattern are bound once.
func (p *Processor) bindLines(ctx context.Context, res *result.ProcessingResult, ev *xpath.Evaluator, strat Strategy, iface mapping.Interface, headerID string) ([]record.Line, bool) {
	var lines []record.Line
	seen := make(map[*xmlquery.Node]bool)
	lineNo := 1

	for _, table := range strat.LineTables() {
		all, err := p.rules.ResolveMappingRules(ctx, iface.ID, table)
		if err != nil {
			res.AppendError(fmt.Sprintf("resolve line rules for %s: %v", table, err))
			return nil, false
		}

		groups := mapping.ResolveLineGroups(mapping.ActiveRules(all, table))
		for _, parent := range mapping.GroupOrder(groups) {
			nodes, method, err := ev.DiscoverLineNodes(parent)
			if err != nil {
				res.AppendError(fmt.Sprintf("line group %s: %v", parent, err))
				continue
			}
			if method != xpath.DiscoveryConfigured && method != "" {
				p.log.Warnf("line group %s for interface %s resolved by %s discovery; consider configuring an explicit group path",
					parent, iface.ID, method)
			}

			for _, node := range nodes {
				if seen[node] {
					continue
				}
				seen[node] = true

				line := strat.NewLine(table)
				line.SetHeaderID(headerID)
				line.SetLineNo(lineNo)
				idx := lineNo
				lineNo++

				if p.bindLine(res, ev, node, parent, groups[parent], line, idx) {
					lines = append(lines, line)
				} else {
					res.LinesFailed++
				}
			}
		}
	}
	return lines, true
}

// bindLine binds all of a group's rules against one line node. The first
// failure excludes the line and leaves its siblings intact.
func (p *Processor) bindLine(res *result.ProcessingResult, ev *xpath.Evaluator, node *xmlquery.Node, parent string, rules []mapping.Rule, line record.Line, idx int) bool {
	for _, rule := range rules {
		rel := xpath.RelativePath(rule.SourcePath, parent)

		start := time.Now()
		raw, _, err := ev.Evaluate(node, rel)
		p.timings.ObserveEvaluate(time.Since(start))
		if err != nil {
			res.AppendError(fmt.Sprintf("line %d field %s: %v", idx, rule.TargetField, err))
			return false
		}

		start = time.Now()
		err = record.Bind(line, rule, raw)
		p.timings.ObserveBind(time.Since(start))
		if err != nil {
			res.AppendError(fmt.Sprintf("line %d: %v", idx, err))
			return false
		}
	}
	return true
}

// fail moves the result to its terminal ERROR state and records it
func (p *Processor) fail(ctx context.Context, res *result.ProcessingResult, msg string) {
	if msg != "" {
		res.AppendError(msg)
	}
	res.MarkError()
	if err := p.recorder.Record(ctx, res); err != nil {
		p.log.Errorf("record processing result %s: %v", res.ID, err)
	}
}
