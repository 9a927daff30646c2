// # internal/astq/glob.go
package astq

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	cerrors "retrofit/internal/core/errors"
)

// Matcher matches project-relative slash paths against a search glob such as
// `src/**/*.ts`, `{src,test}/**/*.ts`, `test*/**/*.ts`, or a literal file
// path. `/**/` also matches a single separator, so `src/**/*.ts` covers
// files directly under src/.
type Matcher struct {
	pattern string
	globs   []glob.Glob
}

func CompileGlob(pattern string) (*Matcher, error) {
	m := &Matcher{pattern: pattern}
	for _, variant := range expandDoubleStar(pattern) {
		g, err := glob.Compile(variant)
		if err != nil {
			return nil, cerrors.Wrap(err, cerrors.CodeValidationError,
				fmt.Sprintf("invalid glob %q", pattern))
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

func (m *Matcher) Match(path string) bool {
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (m *Matcher) String() string { return m.pattern }

// expandDoubleStar rewrites every `/**/` into both itself and a plain `/`,
// yielding the variant set to try.
func expandDoubleStar(pattern string) []string {
	idx := strings.Index(pattern, "/**/")
	if idx < 0 {
		return []string{pattern}
	}
	head := pattern[:idx]
	tails := expandDoubleStar(pattern[idx+len("/**/"):])
	variants := make([]string, 0, len(tails)*2)
	for _, tail := range tails {
		variants = append(variants, head+"/**/"+tail, head+"/"+tail)
	}
	return variants
}
