package route

import (
	"context"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beeper/drawboard/pkg/assets"
	"github.com/beeper/drawboard/pkg/cachestore"
	"github.com/beeper/drawboard/pkg/logutil"
)

// Path shapes recognized by the suffix rules.
const (
	CompiledModuleSuffix = ".jsx.js"
	ModuleSourceExt      = ".jsx"
	DocumentJSONSuffix   = ".excalidraw.json"
	DocumentExt          = ".excalidraw"
)

// Rule names, in default evaluation order.
const (
	RuleCache          = "cache"
	RuleStaticAsset    = "static_asset"
	RuleCompileModule  = "compile_module"
	RuleRedirectScript = "redirect_script"
	RuleJSONDocument   = "json_document"
	RuleRedirectJSON   = "redirect_json"
	RuleNotFound       = "not_found"
)

// Evaluation carries per-request state between a rule's Match and Apply.
type Evaluation struct {
	Request Request
	Key     string

	Entry *cachestore.Entry
	Asset assets.Descriptor

	Log *zerolog.Logger
}

// Rule is one step of the routing chain. Match may look things up and stash
// results on the Evaluation for Apply to use.
type Rule struct {
	Name  string
	Match func(ctx context.Context, d *Decider, eval *Evaluation) bool
	Apply func(ctx context.Context, d *Decider, eval *Evaluation) Decision
}

// DefaultRules returns the routing chain. Order matters: the cache wins over
// everything, exact asset matches win over suffix rules, and each redirect
// comes after the rule that serves its target.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleCache, Match: matchCache, Apply: applyCache},
		{Name: RuleStaticAsset, Match: matchStaticAsset, Apply: applyStaticAsset},
		{Name: RuleCompileModule, Match: matchCompileModule, Apply: applyCompileModule},
		{Name: RuleRedirectScript, Match: matchExt(ModuleSourceExt), Apply: applyRedirect(KindRedirectToScript, ScriptSuffix)},
		{Name: RuleJSONDocument, Match: matchJSONDocument, Apply: applyJSONDocument},
		{Name: RuleRedirectJSON, Match: matchExt(DocumentExt), Apply: applyRedirect(KindRedirectToJSON, JSONSuffix)},
		{Name: RuleNotFound, Match: matchAlways, Apply: applyNotFound},
	}
}

func matchCache(ctx context.Context, d *Decider, eval *Evaluation) bool {
	if d.Cache == nil {
		return false
	}
	entry, found, err := d.Cache.Lookup(ctx, eval.Key)
	if err != nil {
		log := eval.Log
		if log == nil {
			log = logutil.FromContext(ctx, &d.Log, LogComponent)
		}
		log.Warn().Err(err).
			Str("key", eval.Key).
			Msg("Cache lookup failed, treating as miss")
		return false
	}
	// Empty stored bodies count as a miss.
	if !found || entry == nil || len(entry.Body) == 0 {
		return false
	}
	eval.Entry = entry
	return true
}

func applyCache(_ context.Context, _ *Decider, eval *Evaluation) Decision {
	mediaType := eval.Entry.MediaType
	if mediaType == "" {
		mediaType = assets.MediaTypeOrDefault(eval.Key)
	}
	return Decision{
		Kind:      KindCacheHit,
		Body:      eval.Entry.Body,
		MediaType: mediaType,
	}
}

func matchStaticAsset(_ context.Context, d *Decider, eval *Evaluation) bool {
	if d.Assets == nil {
		return false
	}
	desc, ok := d.Assets.Resolve(eval.Request.Path)
	if !ok {
		return false
	}
	eval.Asset = desc
	return true
}

func applyStaticAsset(ctx context.Context, d *Decider, eval *Evaluation) Decision {
	file, err := d.Assets.Read(eval.Asset)
	if err != nil {
		return Failure(&AssetReadError{Path: eval.Asset.FilePath, Err: err})
	}
	if eval.Request.IsNavigation() {
		if d.Composer == nil {
			return Decision{Kind: KindServeStaticDocument, Body: file.Content, MediaType: assets.MediaTypeHTML}
		}
		html, err := d.Composer.Compose(ctx, file.Content)
		if err != nil {
			return Failure(&ComposeError{Path: eval.Asset.FilePath, Err: err})
		}
		return Decision{
			Kind:      KindServeStaticDocument,
			Body:      html,
			MediaType: assets.MediaTypeHTML,
		}
	}
	return Decision{
		Kind:      KindServeStaticFile,
		Body:      file.Content,
		MediaType: file.MediaType,
		Asset:     file.Descriptor,
		ModTime:   file.ModTime,
	}
}

func matchCompileModule(_ context.Context, d *Decider, eval *Evaluation) bool {
	return d.Compiler != nil &&
		eval.Request.IsSameOriginModuleScript() &&
		strings.HasSuffix(eval.Request.Path, CompiledModuleSuffix)
}

func applyCompileModule(ctx context.Context, d *Decider, eval *Evaluation) Decision {
	code, err := d.Compiler.Compile(ctx, eval.Request.Path)
	if err != nil {
		return Failure(&CompileError{Path: eval.Request.Path, Err: err})
	}
	return Decision{
		Kind:      KindServeCompiledModule,
		Body:      code,
		MediaType: assets.MediaTypeJavaScript,
	}
}

func matchJSONDocument(_ context.Context, d *Decider, eval *Evaluation) bool {
	return d.Documents != nil && strings.HasSuffix(eval.Request.Path, DocumentJSONSuffix)
}

func applyJSONDocument(ctx context.Context, d *Decider, eval *Evaluation) Decision {
	body, err := d.Documents.Load(ctx, eval.Request.Path)
	if err != nil {
		return Failure(&DocumentReadError{Path: eval.Request.Path, Err: err})
	}
	return Decision{
		Kind:      KindServeJSONDocument,
		Body:      body,
		MediaType: assets.MediaTypeJSON,
	}
}

func matchExt(ext string) func(context.Context, *Decider, *Evaluation) bool {
	return func(_ context.Context, _ *Decider, eval *Evaluation) bool {
		return path.Ext(eval.Request.Path) == ext
	}
}

func applyRedirect(kind Kind, suffix string) func(context.Context, *Decider, *Evaluation) Decision {
	return func(_ context.Context, _ *Decider, eval *Evaluation) Decision {
		return Redirect(kind, eval.Request.URL, suffix)
	}
}

func matchAlways(context.Context, *Decider, *Evaluation) bool { return true }

func applyNotFound(context.Context, *Decider, *Evaluation) Decision { return NotFound() }
