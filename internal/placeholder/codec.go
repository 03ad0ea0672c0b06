// Package placeholder implements the codec that joins literal template
// segments with reserved placeholder tokens and decodes them again.
//
// A token has the form tpl-<salt>-<index>-. The salt is six random lower-case
// letters generated once per codec, so author content is vanishingly
// unlikely to contain a token by accident. Tokens start with a letter and
// contain no upper-case characters, which lets them survive an HTML
// tokenizer in tag-name, attribute-name, attribute-value and text positions.
package placeholder

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

const (
	prefixBase = "tpl-"
	terminator = '-'
	saltLength = 6
	alphabet   = "abcdefghijklmnopqrstuvwxyz"
)

// Codec encodes interpolation indices as placeholder tokens.
type Codec struct {
	prefix string
}

// New creates a codec with a fresh random salt.
func New() *Codec {
	return NewWithSalt(randomSalt())
}

// NewWithSalt creates a codec with a fixed salt. It is meant for tests that
// need stable tokens.
func NewWithSalt(salt string) *Codec {
	return &Codec{prefix: prefixBase + strings.ToLower(salt) + "-"}
}

var (
	defaultCodec *Codec
	defaultOnce  sync.Once
)

// Default returns the process-wide codec.
func Default() *Codec {
	defaultOnce.Do(func() {
		defaultCodec = New()
	})
	return defaultCodec
}

func randomSalt() string {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("placeholder: reading random salt: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}

// Prefix returns the salted token prefix.
func (c *Codec) Prefix() string { return c.prefix }

// Token returns the placeholder for interpolation i.
func (c *Codec) Token(i int) string {
	return c.prefix + strconv.Itoa(i) + string(terminator)
}

// Instrument joins the literal segments with tokens: segment i and i+1 are
// separated by the token for index i.
func (c *Codec) Instrument(segments []string) string {
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	for i, s := range segments {
		if i > 0 {
			b.WriteString(c.Token(i - 1))
		}
		b.WriteString(s)
	}
	return b.String()
}

// HasPrefix reports whether s starts with a token.
func (c *Codec) HasPrefix(s string) bool {
	if !strings.HasPrefix(s, c.prefix) {
		return false
	}
	_, n := scan(s[len(c.prefix):])
	return n > 0
}

// IsPlaceholder reports whether s is exactly one token.
func (c *Codec) IsPlaceholder(s string) bool {
	_, ok := c.Index(s)
	return ok
}

// Index decodes a token. It fails unless s is exactly one token.
func (c *Codec) Index(s string) (int, bool) {
	if !strings.HasPrefix(s, c.prefix) {
		return 0, false
	}
	rest := s[len(c.prefix):]
	i, n := scan(rest)
	if n == 0 || n != len(rest) {
		return 0, false
	}
	return i, true
}

// Contains reports whether a token occurs anywhere in s.
func (c *Codec) Contains(s string) bool {
	for {
		at := strings.Index(s, c.prefix)
		if at < 0 {
			return false
		}
		if _, n := scan(s[at+len(c.prefix):]); n > 0 {
			return true
		}
		s = s[at+len(c.prefix):]
	}
}

// Part is one piece of a split string: either literal text or a token.
type Part struct {
	Text        string
	Index       int
	Placeholder bool
}

// Split breaks s into literal and placeholder parts, in order. Empty literal
// parts are dropped.
func (c *Codec) Split(s string) []Part {
	var parts []Part
	lit := 0
	pos := 0
	for pos < len(s) {
		at := strings.Index(s[pos:], c.prefix)
		if at < 0 {
			break
		}
		start := pos + at
		numStart := start + len(c.prefix)
		idx, n := scan(s[numStart:])
		if n == 0 {
			pos = numStart
			continue
		}
		if start > lit {
			parts = append(parts, Part{Text: s[lit:start]})
		}
		parts = append(parts, Part{Text: s[start : numStart+n], Index: idx, Placeholder: true})
		pos = numStart + n
		lit = pos
	}
	if lit < len(s) {
		parts = append(parts, Part{Text: s[lit:]})
	}
	return parts
}

// scan decodes "<digits>-" at the start of s and returns the index and the
// number of bytes consumed, or zero bytes when s does not start that way.
func scan(s string) (int, int) {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n >= len(s) || s[n] != terminator {
		return 0, 0
	}
	i, err := strconv.Atoi(s[:n])
	if err != nil {
		return 0, 0
	}
	return i, n + 1
}
