package route

import (
	"bytes"
	"net/http"
	"path"
	"strconv"
)

const (
	HeaderCache   = "X-Cache"
	CacheHitValue = "HIT"
)

// WriteDecision writes d to w.
func WriteDecision(w http.ResponseWriter, r *http.Request, d Decision) {
	header := w.Header()
	switch d.Kind {
	case KindServeStaticFile:
		header.Set("Content-Type", d.MediaType)
		http.ServeContent(w, r, path.Base(d.Asset.FilePath), d.ModTime, bytes.NewReader(d.Body))
		return
	case KindRedirectToScript, KindRedirectToJSON:
		header.Set("Location", d.Location)
		w.WriteHeader(d.StatusCode())
		return
	case KindNotFound:
		w.WriteHeader(http.StatusNotFound)
		return
	case KindError:
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Content-Length", strconv.Itoa(len(d.Message)))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(d.Message))
		return
	case KindCacheHit:
		header.Set(HeaderCache, CacheHitValue)
	}
	if d.MediaType != "" {
		header.Set("Content-Type", d.MediaType)
	}
	header.Set("Content-Length", strconv.Itoa(len(d.Body)))
	w.WriteHeader(d.StatusCode())
	if r.Method != http.MethodHead {
		_, _ = w.Write(d.Body)
	}
}
