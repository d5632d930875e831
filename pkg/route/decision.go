package route

import (
	"net/http"
	"time"

	"github.com/beeper/drawboard/pkg/assets"
)

// Kind identifies which response strategy a Decision carries.
type Kind int

const (
	KindNotFound Kind = iota
	KindCacheHit
	KindServeStaticDocument
	KindServeStaticFile
	KindServeCompiledModule
	KindRedirectToScript
	KindRedirectToJSON
	KindServeJSONDocument
	KindError
)

var kindNames = map[Kind]string{
	KindNotFound:            "not_found",
	KindCacheHit:            "cache_hit",
	KindServeStaticDocument: "serve_static_document",
	KindServeStaticFile:     "serve_static_file",
	KindServeCompiledModule: "serve_compiled_module",
	KindRedirectToScript:    "redirect_to_script",
	KindRedirectToJSON:      "redirect_to_json",
	KindServeJSONDocument:   "serve_json_document",
	KindError:               "error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Decision is the single outcome of routing one request. Only the fields
// relevant to Kind are set.
type Decision struct {
	Kind Kind
	// Rule is the name of the rule that produced the decision.
	Rule string

	Body      []byte
	MediaType string
	Location  string

	// Asset and ModTime are set for KindServeStaticFile.
	Asset   assets.Descriptor
	ModTime time.Time

	Message string
	Err     error
}

// StatusCode returns the HTTP status the decision is written with.
func (d Decision) StatusCode() int {
	switch d.Kind {
	case KindRedirectToScript, KindRedirectToJSON:
		return http.StatusSeeOther
	case KindNotFound:
		return http.StatusNotFound
	case KindError:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

func (d Decision) IsRedirect() bool {
	return d.Kind == KindRedirectToScript || d.Kind == KindRedirectToJSON
}

func NotFound() Decision {
	return Decision{Kind: KindNotFound}
}

// Failure turns an error into an Error decision carrying its message verbatim.
func Failure(err error) Decision {
	return Decision{Kind: KindError, Message: err.Error(), Err: err}
}
