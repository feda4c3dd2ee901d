package logger

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/joeydtaylor/steeze-webhooks/pkg/codec"
)

const maxLoggedBody = 1 << 16 // 64 KiB

var (
	bodyLogMu    sync.RWMutex
	bodyLogPaths = envPaths("WEBHOOK_LOG_BODY_PATHS")
)

func envPaths(key string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out[p] = struct{}{}
		}
	}
	return out
}

// AddBodyLogPaths allowlists request paths whose bodies may be logged.
func AddBodyLogPaths(paths ...string) {
	bodyLogMu.Lock()
	for _, p := range paths {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			bodyLogPaths[p] = struct{}{}
		}
	}
	bodyLogMu.Unlock()
}

// Only capture small JSON or form bodies on allowlisted paths. Decided
// before reading, so large payloads are never buffered here.
func shouldCaptureBody(r *http.Request) bool {
	if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
		return false
	}
	if r.ContentLength <= 0 || r.ContentLength > maxLoggedBody {
		return false
	}
	ct := r.Header.Get("Content-Type")
	if !codec.IsJSON(ct) && !codec.IsForm(ct) {
		return false
	}
	bodyLogMu.RLock()
	_, ok := bodyLogPaths[strings.ToLower(r.URL.Path)]
	bodyLogMu.RUnlock()
	return ok
}
