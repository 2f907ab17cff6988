package logger

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const tagKey = "tag"

// filteringHandler wraps a base slog.Handler and drops records by tag or
// originating package.
type filteringHandler struct {
	base slog.Handler
	cfg  *Config
}

func newFilteringHandler(base slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{base: base, cfg: cfg}
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg == nil || h.allowed(r) {
		return h.base.Handle(ctx, r)
	}
	return nil
}

func (h *filteringHandler) allowed(r slog.Record) bool {
	if pkg := recordPackage(r); pkg != "" {
		if inSet(h.cfg.disabledPackagesSet, pkg) {
			return false
		}
		if h.cfg.enabledPackagesSet != nil && !inSet(h.cfg.enabledPackagesSet, pkg) {
			return false
		}
	}

	tag, tagged := recordTag(r)
	if !tagged {
		// Untagged records pass unless an allow-list of tags is configured.
		return h.cfg.enabledTagsSet == nil
	}
	if inSet(h.cfg.disabledTagsSet, tag) {
		return false
	}
	if h.cfg.enabledTagsSet != nil && !inSet(h.cfg.enabledTagsSet, tag) {
		return false
	}
	return true
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newFilteringHandler(h.base.WithAttrs(attrs), h.cfg)
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return newFilteringHandler(h.base.WithGroup(name), h.cfg)
}

// recordPackage returns the lower-cased directory name of the caller.
func recordPackage(r slog.Record) string {
	if r.PC == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{r.PC})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return strings.ToLower(filepath.Base(filepath.Dir(frame.File)))
}

func recordTag(r slog.Record) (string, bool) {
	var tag string
	var found bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = strings.ToLower(a.Value.String())
			found = true
			return false
		}
		return true
	})
	return tag, found
}

func inSet(set map[string]struct{}, key string) bool {
	if set == nil {
		return false
	}
	_, ok := set[key]
	return ok
}
