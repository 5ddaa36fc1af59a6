package translate

import "github.com/pkg/errors"

// Sentinel errors for the TranslationError taxonomy. Callers use
// errors.Is/errors.As (via github.com/pkg/errors, which preserves the
// standard library's unwrap chain) to recover the specific failure while
// the wrapped message carries the offending statement for humans.
var (
	ErrUnknownStatement = errors.New("unrecognized statement")
	ErrUnknownVariable  = errors.New("unknown variable")
	ErrReservedName     = errors.New("reserved name used as variable")
	ErrStringTooLong    = errors.New("string literal too long")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrUnclosedBlocks   = errors.New("unclosed blocks")
	ErrSpuriousBlockEnd = errors.New("unexpected ;")
)
