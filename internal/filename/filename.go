// Package filename expands output filename patterns. A pattern may contain
// any number of {timestamp:<strftime format>} placeholders and a {ext}
// placeholder for the active format's file extension.
package filename

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

var timestampRe = regexp.MustCompile(`\{timestamp:([^}]+)\}`)

// Resolve produces a concrete filename from a pattern: every
// {timestamp:<fmt>} is formatted against now, {ext} is replaced with ext.
// It is a pure function of its inputs. Malformed strftime directives
// surface whatever error the formatter reports.
func Resolve(pattern string, now time.Time, ext string) (string, error) {
	var ferr error

	out := timestampRe.ReplaceAllStringFunc(pattern, func(m string) string {
		f := timestampRe.FindStringSubmatch(m)[1]

		s, err := strftime.Format(f, now)
		if err != nil {
			ferr = fmt.Errorf("invalid timestamp format '%s': %w", f, err)
			return m
		}

		return s
	})
	if ferr != nil {
		return "", ferr
	}

	return strings.ReplaceAll(out, "{ext}", ext), nil
}
