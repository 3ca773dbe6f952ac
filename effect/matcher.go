package effect

import (
	"regexp"

	"github.com/lixenwraith/void-striker/event"
)

// Matcher selects the events an effect or Take responds to
type Matcher interface {
	Match(name string) bool
	String() string
}

type exactMatcher string

func (m exactMatcher) Match(name string) bool { return string(m) == name }
func (m exactMatcher) String() string         { return string(m) }

type globMatcher string

func (m globMatcher) Match(name string) bool { return event.Match(string(m), name) }
func (m globMatcher) String() string         { return string(m) }

type regexpMatcher struct{ re *regexp.Regexp }

func (m regexpMatcher) Match(name string) bool { return m.re.MatchString(name) }
func (m regexpMatcher) String() string         { return "/" + m.re.String() + "/" }

// Exact matches one event name
func Exact(name string) Matcher { return exactMatcher(name) }

// Glob matches with the dispatcher's wildcard rules
func Glob(pattern string) Matcher { return globMatcher(pattern) }

// Regexp matches names against re
func Regexp(re *regexp.Regexp) Matcher { return regexpMatcher{re: re} }

// Match picks Glob for wildcard patterns and Exact otherwise
func Match(pattern string) Matcher {
	if event.IsPattern(pattern) {
		return Glob(pattern)
	}
	return Exact(pattern)
}
