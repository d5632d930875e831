package route

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/beeper/drawboard/pkg/assets"
	"github.com/beeper/drawboard/pkg/cachestore"
	"github.com/beeper/drawboard/pkg/logutil"
)

// AssetSource resolves and reads the fixed set of static application files.
type AssetSource interface {
	Resolve(path string) (assets.Descriptor, bool)
	Read(desc assets.Descriptor) (*assets.File, error)
}

// DocumentComposer splices generated content into an HTML document.
type DocumentComposer interface {
	Compose(ctx context.Context, html []byte) ([]byte, error)
}

// ModuleCompiler compiles the module source behind a `.jsx.js` request path.
type ModuleCompiler interface {
	Compile(ctx context.Context, requestPath string) ([]byte, error)
}

// DocumentLoader reads a saved drawing for a `.excalidraw.json` request path.
type DocumentLoader interface {
	Load(ctx context.Context, requestPath string) ([]byte, error)
}

// Decider picks exactly one Decision per request by walking Rules in order.
// Nil collaborators make the rules depending on them never match.
type Decider struct {
	Cache     cachestore.Store
	Assets    AssetSource
	Composer  DocumentComposer
	Compiler  ModuleCompiler
	Documents DocumentLoader

	// Rules defaults to DefaultRules() when empty.
	Rules []Rule
	Log   zerolog.Logger
}

// LogComponent tags router log lines.
const LogComponent = "router"

func (d *Decider) rules() []Rule {
	if len(d.Rules) == 0 {
		return DefaultRules()
	}
	return d.Rules
}

// Decide evaluates the rule chain; the first matching rule produces the decision.
func (d *Decider) Decide(ctx context.Context, req Request) Decision {
	log := logutil.FromContext(ctx, &d.Log, LogComponent)
	eval := &Evaluation{
		Request: req,
		Key:     NormalizePath(req.Path),
		Log:     log,
	}
	for _, rule := range d.rules() {
		if !rule.Match(ctx, d, eval) {
			continue
		}
		decision := rule.Apply(ctx, d, eval)
		decision.Rule = rule.Name
		evt := log.Debug()
		if decision.Kind == KindError {
			evt = log.Warn().Err(decision.Err)
		}
		evt.
			Str("rule", rule.Name).
			Str("path", req.Path).
			Stringer("decision", decision.Kind).
			Msg("Routed request")
		return decision
	}
	return NotFound()
}
