package bnf

import (
	"log/slog"
)

type options struct {
	allowUndefined bool
	log            *slog.Logger
}

// Option changes parser behaviour.
type Option func(*options)

// AllowUndefined makes parser replace undefined non-terminals with terminals having the same text
// instead of failing with UndefinedNonTermError.
func AllowUndefined() Option {
	return func(o *options) {
		o.allowUndefined = true
	}
}

// WithLogger sets the logger used for warnings, by default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
