package resolver

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nao1215/linkguard/internal/anchor"
	"github.com/nao1215/linkguard/internal/model"
	"github.com/nao1215/linkguard/internal/probe"
	"github.com/nao1215/linkguard/internal/repo"
)

// ExternalChecker reports whether an external URL is reachable.
// *probe.Checker implements it.
type ExternalChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// InternalValidator validates a URL under the repository base.
// *repo.Validator implements it.
type InternalValidator interface {
	Validate(ctx context.Context, rawURL string) repo.Outcome
}

// Resolver turns a Reference into a ResolutionResult. It is safe for
// concurrent use when its collaborators are.
type Resolver struct {
	root           string
	base           string
	canonicalRef   string
	repoDir        string
	allow          probe.AllowList
	anchors        *anchor.Cache
	external       ExternalChecker
	internal       InternalValidator
	strict         bool
	forbidRelative bool
	logger         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRepository sets the repository base URL and the validator for URLs
// under it. ref is used when suggesting canonical URLs.
func WithRepository(base, ref string, v InternalValidator) Option {
	return func(r *Resolver) {
		r.base = strings.TrimRight(base, "/")
		r.canonicalRef = ref
		r.internal = v
	}
}

// WithRepositoryDir sets the slash-separated path of the tree root inside
// the repository. Suggested canonical URLs are prefixed with it.
func WithRepositoryDir(dir string) Option {
	return func(r *Resolver) {
		if dir == "." {
			dir = ""
		}
		r.repoDir = dir
	}
}

// WithExternal sets the external URL checker. Without one external URLs
// are accepted unchecked.
func WithExternal(c ExternalChecker) Option {
	return func(r *Resolver) {
		r.external = c
	}
}

// WithAllowList sets URL prefixes accepted without any check.
func WithAllowList(allow probe.AllowList) Option {
	return func(r *Resolver) {
		r.allow = allow
	}
}

// WithAnchors shares an anchor cache.
func WithAnchors(c *anchor.Cache) Option {
	return func(r *Resolver) {
		r.anchors = c
	}
}

// WithStrict reports fragments on targets that have no anchors.
func WithStrict(strict bool) Option {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// WithForbidRelative reports every local-path reference instead of
// resolving it.
func WithForbidRelative(forbid bool) Option {
	return func(r *Resolver) {
		r.forbidRelative = forbid
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver for the tree at root, which must be a canonical
// path.
func New(root string, opts ...Option) *Resolver {
	r := &Resolver{
		root:         filepath.Clean(root),
		canonicalRef: "main",
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.anchors == nil {
		r.anchors = anchor.NewCache()
	}
	return r
}

// Classify returns the kind of a raw target.
func (r *Resolver) Classify(raw string) model.RefKind {
	switch {
	case strings.HasPrefix(raw, "#"):
		return model.RefAnchorOnly
	case isWebURL(raw):
		if r.base != "" && strings.HasPrefix(raw, r.base+"/") {
			return model.RefInternalRepoURL
		}
		return model.RefExternalURL
	default:
		return model.RefLocalPath
	}
}

// Resolve resolves one reference. It never returns an error: every
// failure is a broken result.
func (r *Resolver) Resolve(ctx context.Context, ref model.Reference) model.ResolutionResult {
	ref.Kind = r.Classify(ref.Raw)
	if _, frag, ok := strings.Cut(ref.Raw, "#"); ok {
		ref.Fragment = decodeFragment(frag)
	}

	if ref.Kind == model.RefExternalURL || ref.Kind == model.RefInternalRepoURL {
		if r.allow.Match(ref.Raw) {
			return model.OK(ref)
		}
	}

	var res model.ResolutionResult
	switch ref.Kind {
	case model.RefAnchorOnly:
		res = r.resolveAnchorOnly(ref)
	case model.RefLocalPath:
		res = r.resolveLocal(ref)
	case model.RefInternalRepoURL:
		res = r.resolveInternal(ctx, ref)
	default:
		res = r.resolveExternal(ctx, ref)
	}
	if res.Status == model.StatusBroken {
		r.logger.Debug("broken reference", "evidence", ref.Evidence(), "raw", ref.Raw, "reason", res.Explanation())
	}
	return res
}

func (r *Resolver) resolveAnchorOnly(ref model.Reference) model.ResolutionResult {
	if ref.Fragment == "" {
		return model.OK(ref)
	}
	idx, err := r.anchors.Get(ref.SourcePath)
	if err != nil || !idx.Has(ref.Fragment) {
		return model.Broken(ref, model.ReasonMissingAnchor, "#"+ref.Fragment)
	}
	return model.OK(ref)
}

func (r *Resolver) resolveLocal(ref model.Reference) model.ResolutionResult {
	target := ref.Raw
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if decoded, err := url.PathUnescape(target); err == nil {
		target = decoded
	}

	// An empty path before '?' or '#' addresses the source document itself.
	full, rel := ref.SourcePath, ref.Source
	if target != "" {
		full = r.localPath(ref.SourcePath, target)
		rel = r.relative(full)
	}

	if r.forbidRelative {
		return model.Broken(ref, model.ReasonRelativeForbidden, r.canonicalHint(rel))
	}

	info, err := os.Stat(full)
	if err != nil {
		return model.Broken(ref, model.ReasonMissingPath, rel)
	}
	if ref.Fragment == "" {
		return model.OK(ref)
	}
	if info.IsDir() || !model.IsMarkdownPath(full) {
		if r.strict {
			return model.Broken(ref, model.ReasonAnchorNotText, rel)
		}
		return model.OK(ref)
	}
	return r.checkFragment(ref, full, rel)
}

func (r *Resolver) checkFragment(ref model.Reference, full, rel string) model.ResolutionResult {
	idx, err := r.anchors.Get(full)
	if err != nil {
		return model.Broken(ref, model.ReasonMissingPath, rel)
	}
	if !idx.Has(ref.Fragment) {
		return model.Broken(ref, model.ReasonMissingAnchor, rel+"#"+ref.Fragment)
	}
	return model.OK(ref)
}

func (r *Resolver) resolveInternal(ctx context.Context, ref model.Reference) model.ResolutionResult {
	if r.internal == nil {
		return model.Broken(ref, model.ReasonInvalidInternalURL, "")
	}
	out := r.internal.Validate(ctx, ref.Raw)
	if out.OK() {
		return model.OK(ref)
	}
	return model.Broken(ref, out.Reason, out.Detail)
}

func (r *Resolver) resolveExternal(ctx context.Context, ref model.Reference) model.ResolutionResult {
	if r.external == nil {
		return model.OK(ref)
	}
	if err := r.external.Check(ctx, ref.Raw); err != nil {
		return model.Broken(ref, model.ReasonBrokenURL, err.Error())
	}
	return model.OK(ref)
}

// localPath resolves target against the tree root when it starts with '/',
// otherwise against the directory of the source document.
func (r *Resolver) localPath(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return filepath.Join(r.root, filepath.FromSlash(target))
	}
	return filepath.Join(filepath.Dir(source), filepath.FromSlash(target))
}

// relative renders full relative to the root with forward slashes. Paths
// outside the root keep their ".." segments.
func (r *Resolver) relative(full string) string {
	rel, err := filepath.Rel(r.root, full)
	if err != nil {
		return filepath.ToSlash(full)
	}
	return filepath.ToSlash(rel)
}

func (r *Resolver) canonicalHint(rel string) string {
	if r.base == "" {
		return "non-absolute or unsupported URL"
	}
	return "use " + r.base + "/blob/" + r.canonicalRef + "/" + path.Join(r.repoDir, rel)
}

func isWebURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func decodeFragment(f string) string {
	if d, err := url.PathUnescape(f); err == nil {
		return d
	}
	return f
}
