package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/nao1215/linkguard/internal/anchor"
	"github.com/nao1215/linkguard/internal/cache"
	"github.com/nao1215/linkguard/internal/model"
	"github.com/nao1215/linkguard/internal/vcs"
)

// lineFragmentPattern matches the line-range fragments of hosted file
// views, such as L10 or L10-L20.
var lineFragmentPattern = regexp.MustCompile(`^L\d+(C\d+)?(-L\d+(C\d+)?)?$`)

// Outcome is the result of validating one internal URL. The zero value
// means the URL is valid.
type Outcome struct {
	Reason model.Reason
	Detail string
}

// OK reports whether the URL validated.
func (o Outcome) OK() bool {
	return o.Reason == model.ReasonNone
}

func fail(reason model.Reason, format string, args ...any) Outcome {
	return Outcome{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// where records in which history a ref was found.
type where int

const (
	nowhere where = iota
	inLocal
	inRemote
)

type refState struct {
	where where
	err   error
}

// Validator validates internal repository URLs. It is safe for concurrent
// use; outcomes are cached per URL and ref existence per ref.
type Validator struct {
	base        string
	root        string
	mutableRefs []string
	local       vcs.Local
	remote      vcs.Remote
	anchors     *anchor.Cache
	strict      bool
	logger      *slog.Logger

	urls  cache.Memo[Outcome]
	refs  cache.Memo[refState]
	blobs cache.Memo[*anchor.Index]
}

// Option configures a Validator.
type Option func(*Validator)

// WithMutableRefs sets the refs validated against the working tree.
func WithMutableRefs(refs []string) Option {
	return func(v *Validator) {
		v.mutableRefs = refs
	}
}

// WithLocal sets the local history backend.
func WithLocal(local vcs.Local) Option {
	return func(v *Validator) {
		v.local = local
	}
}

// WithRemote sets the remote backend consulted for refs absent locally.
func WithRemote(remote vcs.Remote) Option {
	return func(v *Validator) {
		v.remote = remote
	}
}

// WithAnchors shares an anchor cache with the rest of the run.
func WithAnchors(c *anchor.Cache) Option {
	return func(v *Validator) {
		v.anchors = c
	}
}

// WithStrict reports fragments on non-markdown blobs.
func WithStrict(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// NewValidator creates a Validator for URLs under base. top is the top-level
// directory of the working tree; URL paths at mutable refs resolve against
// it, as "ref:path" addresses do for pinned refs.
func NewValidator(base, top string, opts ...Option) *Validator {
	v := &Validator{
		base:        base,
		root:        top,
		mutableRefs: []string{"main"},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.anchors == nil {
		v.anchors = anchor.NewCache()
	}
	return v
}

// Validate checks one internal URL.
func (v *Validator) Validate(ctx context.Context, rawURL string) Outcome {
	out, _ := v.urls.Do(rawURL, func() (Outcome, error) {
		return v.validate(ctx, rawURL), nil
	})
	return out
}

// Lookups returns how many distinct refs needed an existence check.
func (v *Validator) Lookups() int {
	return v.refs.Computations()
}

func (v *Validator) validate(ctx context.Context, rawURL string) Outcome {
	t, err := ParseURL(v.base, rawURL, v.mutableRefs)
	if err != nil {
		v.logger.Debug("invalid internal url", "url", rawURL, "error", err)
		return Outcome{Reason: model.ReasonInvalidInternalURL}
	}
	if v.isMutable(t.Ref) {
		return v.validateWorkspace(t)
	}
	return v.validatePinned(ctx, t)
}

func (v *Validator) isMutable(ref string) bool {
	for _, m := range v.mutableRefs {
		if m == ref {
			return true
		}
	}
	return false
}

// validateWorkspace checks a mutable-ref URL against the working tree.
func (v *Validator) validateWorkspace(t Target) Outcome {
	display := t.Path
	if display == "" {
		display = "."
	}
	full := filepath.Join(v.root, filepath.FromSlash(t.Path))
	info, err := os.Stat(full)
	if err != nil {
		return fail(model.ReasonMissingPath, "%s", display)
	}

	actual := vcs.KindBlob
	if info.IsDir() {
		actual = vcs.KindTree
	}
	if actual != t.Kind {
		return fail(model.ReasonKindMismatch, "%s is %s, expected %s", display, actual, t.Kind)
	}

	if t.Fragment == "" || t.Kind != vcs.KindBlob {
		return Outcome{}
	}
	if !model.IsMarkdownPath(t.Path) {
		return v.nonTextFragment(t, display)
	}
	idx, err := v.anchors.Get(full)
	if err != nil {
		return fail(model.ReasonMissingPath, "%s", display)
	}
	if !idx.Has(t.Fragment) {
		return fail(model.ReasonMissingAnchor, "%s#%s", display, t.Fragment)
	}
	return Outcome{}
}

// validatePinned checks a pinned-ref URL against version-control history.
func (v *Validator) validatePinned(ctx context.Context, t Target) Outcome {
	state := v.refExists(ctx, t.Ref)
	switch {
	case state.where == nowhere && state.err != nil:
		return fail(model.ReasonRefNotFound, "%s: %v", t.Ref, state.err)
	case state.where == nowhere:
		return fail(model.ReasonRefNotFound, "%s", t.Ref)
	}

	var kind vcs.ObjectKind
	var err error
	if state.where == inLocal {
		kind, err = v.local.ObjectKind(ctx, t.Ref, t.Path)
	} else {
		kind, err = v.remote.ObjectKind(ctx, t.Ref, t.Path)
	}
	switch {
	case errors.Is(err, vcs.ErrUnsupported):
		return fail(model.ReasonObjectNotFound, "%s: remote lookup unsupported", t.Spec())
	case err != nil:
		return fail(model.ReasonObjectNotFound, "%s: %v", t.Spec(), err)
	case kind == vcs.KindNone:
		return fail(model.ReasonObjectNotFound, "%s", t.Spec())
	case kind != t.Kind:
		return fail(model.ReasonKindMismatch, "%s is %s, expected %s", t.Spec(), kind, t.Kind)
	}

	if t.Fragment == "" || t.Kind != vcs.KindBlob {
		return Outcome{}
	}
	if !model.IsMarkdownPath(t.Path) {
		return v.nonTextFragment(t, t.Spec())
	}
	if state.where != inLocal {
		return Outcome{}
	}
	idx, err := v.blobs.Do(t.Spec(), func() (*anchor.Index, error) {
		data, err := v.local.ReadBlob(ctx, t.Ref, t.Path)
		if err != nil {
			return nil, err
		}
		return anchor.Build(string(data)), nil
	})
	if err != nil {
		return fail(model.ReasonObjectNotFound, "%s: %v", t.Spec(), err)
	}
	if !idx.Has(t.Fragment) {
		return fail(model.ReasonMissingAnchor, "%s#%s", t.Spec(), t.Fragment)
	}
	return Outcome{}
}

// nonTextFragment handles a fragment on a blob without headings. Line
// fragments are meaningful to the hosted file view and always accepted.
func (v *Validator) nonTextFragment(t Target, display string) Outcome {
	if !v.strict || lineFragmentPattern.MatchString(t.Fragment) {
		return Outcome{}
	}
	return fail(model.ReasonAnchorNotText, "%s", display)
}

// refExists proves a pinned ref locally first, then remotely.
func (v *Validator) refExists(ctx context.Context, ref string) refState {
	state, _ := v.refs.Do(ref, func() (refState, error) {
		if v.local != nil {
			ok, err := v.local.HasCommit(ctx, ref)
			if err != nil {
				v.logger.Warn("local ref lookup failed", "ref", ref, "error", err)
			}
			if ok {
				return refState{where: inLocal}, nil
			}
		}
		if v.remote == nil {
			return refState{where: nowhere}, nil
		}
		ok, err := v.remote.HasRef(ctx, ref)
		if err != nil {
			v.logger.Warn("remote ref lookup failed", "ref", ref, "error", err)
			return refState{where: nowhere, err: err}, nil
		}
		if ok {
			return refState{where: inRemote}, nil
		}
		return refState{where: nowhere}, nil
	})
	return state
}
