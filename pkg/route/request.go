package route

import (
	"net/http"
)

// Fetch metadata values the router cares about.
const (
	FetchModeNavigate   = "navigate"
	FetchModeCORS       = "cors"
	FetchDestDocument   = "document"
	FetchDestScript     = "script"
	FetchSiteSameOrigin = "same-origin"
)

const (
	HeaderFetchMode = "Sec-Fetch-Mode"
	HeaderFetchDest = "Sec-Fetch-Dest"
	HeaderFetchSite = "Sec-Fetch-Site"
)

// Request is the routing view of an incoming HTTP request.
type Request struct {
	// Path is the URL-decoded request path.
	Path      string
	FetchMode string
	FetchDest string
	FetchSite string
	// URL is the absolute request URL, used as the base of redirect targets.
	URL string
}

// IsNavigation reports whether the browser is loading a whole document.
func (r Request) IsNavigation() bool {
	return r.FetchMode == FetchModeNavigate || r.FetchDest == FetchDestDocument
}

func (r Request) IsSameOriginModuleScript() bool {
	return r.FetchDest == FetchDestScript && r.FetchMode == FetchModeCORS && r.FetchSite == FetchSiteSameOrigin
}

// RequestFromHTTP extracts the routing inputs from an HTTP request.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		Path:      r.URL.Path,
		FetchMode: r.Header.Get(HeaderFetchMode),
		FetchDest: r.Header.Get(HeaderFetchDest),
		FetchSite: r.Header.Get(HeaderFetchSite),
		URL:       absoluteURL(r),
	}
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	uri := r.RequestURI
	if uri == "" || uri[0] != '/' {
		uri = r.URL.RequestURI()
	}
	return scheme + "://" + host + uri
}
