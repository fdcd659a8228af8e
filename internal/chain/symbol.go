// Package chain resolves option chains for skew computation.
package chain

import "strings"

// SymbolKind classifies an instrument symbol.
type SymbolKind string

const (
	// KindEquity covers equities and indexes, looked up per symbol.
	KindEquity SymbolKind = "EQUITY"
	// KindFuturesRoot is a futures product root, e.g. /ES.
	KindFuturesRoot SymbolKind = "FUTURES_ROOT"
	// KindFuturesContract is a dated futures contract, e.g. /ESZ5.
	KindFuturesContract SymbolKind = "FUTURES_CONTRACT"
)

// monthCodes are the futures delivery month letters.
const monthCodes = "FGHJKMNQUVXZ"

// Normalize canonicalizes a raw symbol for use as a cache key: trimmed,
// uppercased, slash removed.
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(s, "/", "")
}

// Classify determines what kind of instrument a raw symbol names. Futures
// always carry a leading slash; a dated contract is a root followed by a
// single delivery month letter and a one- or two-digit year. Everything
// without a slash is an equity or index.
func Classify(symbol string) SymbolKind {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if !strings.HasPrefix(s, "/") {
		return KindEquity
	}
	if isContract(strings.TrimPrefix(s, "/")) {
		return KindFuturesContract
	}
	return KindFuturesRoot
}

// Root strips any contract suffix from a futures symbol and returns the bare
// product root without the leading slash. For equities it returns the
// trimmed, uppercased symbol unchanged.
func Root(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	futures := strings.HasPrefix(s, "/")
	s = strings.TrimPrefix(s, "/")

	if futures && isContract(s) {
		trimmed := strings.TrimRight(s, "0123456789")
		return trimmed[:len(trimmed)-1]
	}
	return s
}

// isContract reports whether a slashless symbol has a delivery month code
// followed by a 1-2 digit year.
func isContract(s string) bool {
	trimmed := strings.TrimRight(s, "0123456789")
	digits := len(s) - len(trimmed)
	if digits < 1 || digits > 2 {
		return false
	}
	// A root must remain after removing month code and year.
	if len(trimmed) < 2 {
		return false
	}
	month := trimmed[len(trimmed)-1]
	return strings.IndexByte(monthCodes, month) >= 0
}
