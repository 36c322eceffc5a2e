// Package repo validates links into the project's own hosted repository,
// shaped <base>/(blob|tree)/<ref>/<path>[#fragment].
//
// Mutable refs (branches such as main) are checked against the working tree
// without consulting history, so results do not depend on how deep the
// checkout is. Any other ref is treated as pinned: it must exist in local
// history or, failing that, on the remote, and the object at ref:path must
// exist with the kind the URL claims. A ref that cannot be proven to exist
// is reported as "ref not found".
package repo
