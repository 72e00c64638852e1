package editor

import (
	"go.uber.org/zap"

	"github.com/iw2rmb/quill/completion"
)

// Config configures the editor Model.
type Config struct {
	// Initial text for the internal buffer.
	Text string

	// Provider drives menu and inline completions. Nil disables both.
	Provider completion.Provider

	// WordRune overrides the word-character predicate used when a manual
	// trigger scans backwards for the current word.
	WordRune func(r rune) bool

	// Tick overrides the inline debounce timer. Nil uses real time.
	Tick completion.TickFunc

	KeyMap         KeyMap
	CompletionKeys CompletionKeyMap

	Style Style

	ReadOnly bool

	// Forwarded to buffer.Options.
	HistoryLimit int

	// OnChange is invoked after every effective buffer mutation.
	OnChange func(ChangeEvent)

	Logger *zap.Logger
}

func normalizeConfig(cfg Config) Config {
	if cfg.KeyMap.isZero() {
		cfg.KeyMap = DefaultKeyMap()
	}
	if cfg.CompletionKeys.isZero() {
		cfg.CompletionKeys = DefaultCompletionKeyMap()
	}
	if cfg.Style.isZero() {
		cfg.Style = DefaultStyle()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
