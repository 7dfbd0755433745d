// Package xlog is the module's only logging surface: a slog.Handler
// wrapper grounded on rcornwell-S370's util/logger, timestamping and
// level-prefixing every line. Other packages log through the standard
// slog functions, which Install routes to this handler; nothing in the
// translator uses fmt.Println for debug output.
package xlog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler formats records as "<time> <LEVEL>: <message> <attrs...>" and
// writes them to out, gated by debug: Debug-level records are dropped
// unless debug is true.
type Handler struct {
	out   io.Writer
	mu    *sync.Mutex
	level slog.Level
	debug bool
}

// NewHandler builds a Handler writing to out at the given minimum level.
// debug additionally unlocks slog.LevelDebug records regardless of level.
func NewHandler(out io.Writer, level slog.Level, debug bool) *Handler {
	return &Handler{out: out, mu: &sync.Mutex{}, level: level, debug: debug}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debug
	}
	return level >= h.level
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *Handler) WithGroup(name string) slog.Handler { return h }

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, strings.Join(parts, " ")+"\n")
	return err
}

// Install makes h the process-wide default slog handler.
func Install(h *Handler) {
	slog.SetDefault(slog.New(h))
}
