// Package logx contains the github.com/apex/log handler used by the
// etls command line.
package logx

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/fatih/color"
	colorable "github.com/mattn/go-colorable"
)

var bold = color.New(color.Bold)

// Colors mapping.
var Colors = [...]*color.Color{
	log.DebugLevel: color.New(color.FgWhite),
	log.InfoLevel:  color.New(color.FgBlue),
	log.WarnLevel:  color.New(color.FgYellow),
	log.ErrorLevel: color.New(color.FgRed),
	log.FatalLevel: color.New(color.FgRed),
}

// Strings mapping.
var Strings = [...]string{
	log.DebugLevel: "•",
	log.InfoLevel:  "•",
	log.WarnLevel:  "!",
	log.ErrorLevel: "⨯",
	log.FatalLevel: "⨯",
}

// Emojis mapping, used when Handler.Emoji is true.
var Emojis = [...]string{
	log.DebugLevel: "🧐",
	log.InfoLevel:  "🗒️",
	log.WarnLevel:  "🔥",
	log.ErrorLevel: "💣",
	log.FatalLevel: "💀",
}

// Handler implementation.
type Handler struct {
	mu sync.Mutex

	// Writer is where we write.
	Writer io.Writer

	// Padding is the left padding of the level marker.
	Padding int

	// Elapsed prefixes each line with the seconds elapsed since start.
	Elapsed bool

	// Emoji replaces the level markers with emojis.
	Emoji bool

	start time.Time
}

// New handler. Colors are enabled when w is a terminal.
func New(w io.Writer) *Handler {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return &Handler{
		Writer:  w,
		Padding: 3,
		start:   time.Now(),
	}
}

// NewHandlerWithDefaultSettings returns a handler writing to stderr.
func NewHandlerWithDefaultSettings() *Handler {
	return New(os.Stderr)
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	color := Colors[e.Level]
	level := Strings[e.Level]
	if h.Emoji {
		level = Emojis[e.Level]
	}
	s := color.Sprintf("%s %-25s", bold.Sprintf("%*s", h.Padding+1, level), e.Message)
	if h.Elapsed {
		s = fmt.Sprintf("[%10.6f] %s", time.Since(h.start).Seconds(), s)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s += fmt.Sprintf(" %s=%v", color.Sprint(name), e.Fields.Get(name))
	}

	_, err := fmt.Fprintln(h.Writer, s)
	return err
}
