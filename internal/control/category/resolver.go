package category

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/control/vectordb"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

// ErrUnresolved means no resolution step produced a known category. The
// chain treats this as fatal for the run, after tearing the index down.
var ErrUnresolved = errors.New("could not resolve document category")

// Resolver decides which meta-category's controls apply to a document.
// Steps run in fixed order and the first hit wins:
//  1. explicit category from the request
//  2. name of the document's parent directory
//  3. any known category appearing as a path segment
//  4. keyword patterns matched against the first indexed chunk
type Resolver struct {
	known    []string
	keywords []keywordMatcher
	logger   *logger_i.Logger
}

type keywordMatcher struct {
	category string
	re       *regexp.Regexp
}

func NewResolver(cfg config.Pipeline) (*Resolver, error) {
	r := &Resolver{
		known:  cfg.KnownCategories,
		logger: logger_i.NewLogger("Category Resolver"),
	}
	for _, kw := range cfg.Keywords {
		re, err := regexp.Compile(kw.Pattern)
		if err != nil {
			return nil, errors.New("bad keyword pattern for " + kw.Category + ": " + err.Error())
		}
		r.keywords = append(r.keywords, keywordMatcher{category: kw.Category, re: re})
	}
	return r, nil
}

// Resolve runs the resolution steps for one document. index and handle
// are only consulted for the content-based step and may be nil/empty when
// the caller has no index, in which case that step is skipped.
func (r *Resolver) Resolve(ctx context.Context, explicit string, docPath string, index vectordb.Index, h vectordb.Handle) (string, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if cat, ok := r.normalize(explicit); ok {
		log.Debug("Category given explicitly", "category", cat)
		return cat, nil
	}

	if cat, ok := r.normalize(filepath.Base(filepath.Dir(docPath))); ok {
		log.Debug("Category from parent directory", "category", cat)
		return cat, nil
	}

	if cat, ok := r.fromPathSegments(docPath); ok {
		log.Debug("Category from path segment", "category", cat)
		return cat, nil
	}

	if index != nil && h != "" {
		cat, ok, err := r.fromContent(ctx, index, h)
		if err != nil {
			log.Warn("Content-based category detection failed", "error", err)
		} else if ok {
			log.Debug("Category from document content", "category", cat)
			return cat, nil
		}
	}

	return "", ErrUnresolved
}

// normalize reports whether the candidate names a known category,
// ignoring case and surrounding whitespace.
func (r *Resolver) normalize(candidate string) (string, bool) {
	c := strings.TrimSpace(candidate)
	for _, known := range r.known {
		if strings.EqualFold(c, known) {
			return known, true
		}
	}
	return "", false
}

func (r *Resolver) fromPathSegments(docPath string) (string, bool) {
	for _, seg := range strings.Split(filepath.ToSlash(docPath), "/") {
		if cat, ok := r.normalize(seg); ok {
			return cat, true
		}
	}
	return "", false
}

// fromContent peeks the first chunk out of the index and tries each
// keyword pattern in KnownCategories order.
func (r *Resolver) fromContent(ctx context.Context, index vectordb.Index, h vectordb.Handle) (string, bool, error) {
	matches, err := index.Peek(ctx, h, 1)
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 {
		return "", false, nil
	}

	text := matches[0].Text
	for _, kw := range r.keywords {
		if kw.re.MatchString(text) {
			return kw.category, true, nil
		}
	}
	return "", false, nil
}
