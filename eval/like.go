package eval

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"yachtsql/expr"
	"yachtsql/table"
	"yachtsql/value"
	"yachtsql/yqerr"
)

// likeCacheCapacity is the per-cache LRU bound. The 256 default matches
// the engine's historical policy; SetLikeCacheCapacity lets the session
// override it from configuration.
var likeCacheCapacity atomic.Int32

func init() { likeCacheCapacity.Store(256) }

// SetLikeCacheCapacity resizes the LIKE pattern cache bound for caches
// created from now on; already-pooled caches keep their old capacity
// until they age out.
func SetLikeCacheCapacity(n int) {
	if n > 0 {
		likeCacheCapacity.Store(int32(n))
	}
}

type likeKey struct {
	pattern string
	ci      bool
}

// likePool stands in for a per-thread LIKE regex cache (real
// thread-locals don't exist in Go): each call borrows a cache,
// uses it, and returns it immediately, so in practice a small number of
// caches circulate across goroutines instead of one global cache with
// lock contention.
var likePool = sync.Pool{
	New: func() any {
		c, _ := lru.New[likeKey, *regexp.Regexp](int(likeCacheCapacity.Load()))
		return c
	},
}

func compileLike(pattern string, caseInsensitive bool) (*regexp.Regexp, error) {
	key := likeKey{pattern: pattern, ci: caseInsensitive}
	cache := likePool.Get().(*lru.Cache[likeKey, *regexp.Regexp])
	defer likePool.Put(cache)

	if re, ok := cache.Get(key); ok {
		return re, nil
	}
	translated := likePatternToRegex(pattern)
	if caseInsensitive {
		translated = "(?i)" + translated
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, &yqerr.RegexError{Pattern: pattern, Reason: err.Error()}
	}
	cache.Add(key, re)
	return re, nil
}

// likePatternToRegex translates a SQL LIKE pattern to an anchored
// regex: `%` becomes `.*`, `_` becomes `.`, and every other rune is
// quoted literally.
func likePatternToRegex(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return b.String()
}

func (e *ValueEvaluator) evalLike(n *expr.Like, record table.Record) (value.Value, error) {
	operand, err := e.Evaluate(n.Operand, record)
	if err != nil {
		return value.Null, err
	}
	pattern, err := e.Evaluate(n.Pattern, record)
	if err != nil {
		return value.Null, err
	}
	if operand.IsNull() || pattern.IsNull() {
		return value.Null, nil
	}
	s, ok := operand.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("LIKE requires a STRING operand")
	}
	p, ok := pattern.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("LIKE requires a STRING pattern")
	}

	re, err := compileLike(p, n.CaseInsensitive)
	if err != nil {
		return value.Null, err
	}
	matched := re.MatchString(s)
	return value.Bool(matched != n.Negated), nil
}
