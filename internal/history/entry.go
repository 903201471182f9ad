package history

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Parse errors for history lines. Callers that stream a log skip lines
// failing with these and keep going; they never abort a load.
var (
	ErrMalformedLine = errors.New("2 or 3 fields expected")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrInvalidFlags  = errors.New("invalid flags")
)

// Entry is a single record in the web history.
//
// Redirect marks an intermediate hop: the entry is kept for completeness
// but hidden from user-facing suggestions.
type Entry struct {
	Atime    float64
	URL      string
	Title    string
	Redirect bool
}

// NewEntry builds an Entry, validating and normalizing the URL.
// The stored URL is percent-encoded with any password removed.
func NewEntry(atime float64, rawURL, title string, redirect bool) (Entry, error) {
	normalized, err := normalizeURL(rawURL)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Atime:    atime,
		URL:      normalized,
		Title:    title,
		Redirect: redirect,
	}, nil
}

// normalizeURL validates rawURL and returns its canonical string form:
// absolute, fully percent-encoded, password stripped from any userinfo.
// The line grammar depends on the URL containing no whitespace, so a
// URL that cannot be rendered without it is invalid.
func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			u.User = url.User(name)
		} else {
			u.User = nil
		}
	}
	// URL.String escapes the path and fragment but emits RawQuery
	// verbatim, so stray query bytes must be escaped here.
	u.RawQuery = escapeQuery(u.RawQuery)

	s := u.String()
	if strings.ContainsAny(s, " \t\r\n") {
		return "", fmt.Errorf("%w: whitespace in %q", ErrInvalidURL, rawURL)
	}
	return s, nil
}

const upperhex = "0123456789ABCDEF"

// escapeQuery percent-encodes every byte of a raw query that is not a
// valid query character, leaving separators and existing
// percent-escapes alone.
func escapeQuery(q string) string {
	escape := 0
	for i := 0; i < len(q); i++ {
		if !isQueryByte(q[i]) {
			escape++
		}
	}
	if escape == 0 {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 2*escape)
	for i := 0; i < len(q); i++ {
		c := q[i]
		if isQueryByte(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

// isQueryByte reports whether c may appear verbatim in a URL query per
// RFC 3986. '%' stays verbatim so existing escapes are not
// double-encoded.
func isQueryByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~',
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=',
		':', '@', '/', '?', '%':
		return true
	}
	return false
}

// String renders the entry in its on-disk line form:
// "<atime>[-r] <url> [<title>]". The atime is truncated to an integer;
// the title is omitted entirely when empty.
func (e Entry) String() string {
	atime := strconv.FormatInt(int64(e.Atime), 10)
	if e.Redirect {
		atime += "-r"
	}
	elems := []string{atime, e.URL}
	if e.Title != "" {
		elems = append(elems, e.Title)
	}
	return strings.Join(elems, " ")
}

// ParseEntry parses a history line like "12345 http://example.com title".
// The title may contain spaces; it is everything after the second field.
func ParseEntry(line string) (Entry, error) {
	fields := splitFields(line, 3)

	var atimeField, urlField, title string
	switch len(fields) {
	case 2:
		atimeField, urlField = fields[0], fields[1]
	case 3:
		atimeField, urlField, title = fields[0], fields[1], fields[2]
	default:
		return Entry{}, ErrMalformedLine
	}

	// Old versions wrote NUL bytes before the timestamp on some crashes.
	atimeField = strings.TrimLeft(atimeField, "\x00")

	var flags string
	if idx := strings.IndexByte(atimeField, '-'); idx >= 0 {
		atimeField, flags = atimeField[:idx], atimeField[idx+1:]
	}
	if strings.Trim(flags, "r") != "" {
		return Entry{}, fmt.Errorf("%w %q", ErrInvalidFlags, flags)
	}
	redirect := strings.ContainsRune(flags, 'r')

	atime, err := strconv.ParseFloat(atimeField, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: bad atime %q", ErrMalformedLine, atimeField)
	}

	return NewEntry(atime, urlField, title, redirect)
}

// splitFields splits s on runs of whitespace into at most max fields,
// the last field keeping the remainder of the string verbatim.
func splitFields(s string, max int) []string {
	var fields []string
	s = strings.TrimLeft(s, " \t")
	for len(s) > 0 {
		if len(fields) == max-1 {
			fields = append(fields, s)
			break
		}
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			fields = append(fields, s)
			break
		}
		fields = append(fields, s[:idx])
		s = strings.TrimLeft(s[idx:], " \t")
	}
	return fields
}
