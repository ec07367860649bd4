// Package annotation parses the arguments of a //metricweave:instrument
// directive into a validated instrumentation config.
//
// The grammar is a flat list of key="value" pairs separated by commas or
// whitespace. Exactly one key is recognized: name. Anything else is a
// build-time error. The parse is pure; position reporting is layered on by
// the caller, which knows the directive's file position.
package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Directive is the comment prefix that marks a function for weaving.
const Directive = "//metricweave:instrument"

// Sentinel errors so callers can classify failures with errors.Is.
var (
	// ErrDuplicateArgument reports a repeated name argument.
	ErrDuplicateArgument = errors.New("expected only a single `name` argument")

	// ErrUnrecognizedArgument reports an unsupported key. The supported
	// argument set is exactly: name.
	ErrUnrecognizedArgument = errors.New(`unrecognized argument: expected "name"`)
)

// Config is the validated instrumentation configuration for one function.
// A zero Name means no explicit base name was supplied and the metric base
// is derived from the declaration path instead.
type Config struct {
	Name string
}

// Explicit reports whether an explicit base name was supplied.
func (c Config) Explicit() bool { return c.Name != "" }

// Parse parses raw directive arguments, e.g. `name="req_latency"`.
// An empty argument string yields the zero Config.
func Parse(args string) (Config, error) {
	var cfg Config
	seen := map[string]bool{}

	rest := strings.TrimSpace(args)
	for rest != "" {
		key, value, remainder, err := nextArg(rest)
		if err != nil {
			return Config{}, err
		}
		rest = remainder

		if key != "name" {
			return Config{}, fmt.Errorf("%w, got %q", ErrUnrecognizedArgument, key)
		}
		if seen[key] {
			return Config{}, ErrDuplicateArgument
		}
		seen[key] = true
		cfg.Name = value
	}

	return cfg, nil
}

// nextArg consumes one key="value" pair from the front of s and returns the
// unconsumed remainder with any separator stripped.
func nextArg(s string) (key, value, rest string, err error) {
	eq := strings.IndexByte(s, '=')
	if eq < 0 {
		return "", "", "", fmt.Errorf("malformed argument %q: expected key=\"value\"", s)
	}

	key = strings.TrimSpace(s[:eq])
	if key == "" || !isIdent(key) {
		return "", "", "", fmt.Errorf("malformed argument key %q", strings.TrimSpace(s[:eq]))
	}

	s = strings.TrimSpace(s[eq+1:])
	if len(s) == 0 || s[0] != '"' {
		return "", "", "", fmt.Errorf("argument %q must be a quoted string literal", key)
	}

	end := closingQuote(s)
	if end < 0 {
		return "", "", "", fmt.Errorf("unterminated string literal in argument %q", key)
	}

	value, err = strconv.Unquote(s[:end+1])
	if err != nil {
		return "", "", "", fmt.Errorf("invalid string literal in argument %q: %w", key, err)
	}

	rest = strings.TrimSpace(s[end+1:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	return key, value, rest, nil
}

// closingQuote returns the index of the terminating double quote of the
// string literal at the start of s, honoring backslash escapes.
func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func isIdent(s string) bool {
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// FromComment extracts the argument text from a directive comment line.
// ok is false if the comment is not an instrument directive.
func FromComment(text string) (args string, ok bool) {
	if !strings.HasPrefix(text, Directive) {
		return "", false
	}
	tail := text[len(Directive):]
	if tail != "" && tail[0] != ' ' && tail[0] != '\t' {
		// A different directive sharing the prefix, e.g. //metricweave:instrumentx.
		return "", false
	}
	return strings.TrimSpace(tail), true
}
