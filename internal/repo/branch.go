package repo

import (
	"svc/internal/errors"
	"svc/internal/graph"

	"go.uber.org/zap"
)

// Resolution resolves one conflicting file of a merge.
type Resolution struct {
	FileName     string `json:"file_name"`
	ResolvedFile string `json:"resolved_file"`
}

// ValidBranchName reports whether name is non-empty and made only of
// [A-Za-z0-9_/-].
func ValidBranchName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '_', c == '/', c == '-':
		default:
			return false
		}
	}
	return true
}

// Branch opens a new staging node on branch name as a child of head. The
// active branch does not change.
func (r *Repository) Branch(name string) error {
	if !ValidBranchName(name) {
		return errors.InvalidArgument("invalid branch name %q", name)
	}
	if _, exists := r.branches[name]; exists {
		return errors.Conflict("branch %q already exists", name)
	}
	if r.Changed() {
		return errors.PreconditionFailed("uncommitted changes on branch %s", r.CurrentBranch())
	}

	id, err := r.graph.Spawn(r.head, name, r.src.Copy(r.headFiles()))
	if err != nil {
		return errors.Internal("branching: %v", err)
	}
	r.branches[name] = &branchRef{name: name, root: id, tip: id}
	r.branchOrder = append(r.branchOrder, name)

	r.logger.Debug("branched",
		zap.String("branch", name),
		zap.String("from", r.node(r.head).CommitID()),
	)
	return nil
}

// Checkout makes the open tip of branch name the current node.
func (r *Repository) Checkout(name string) error {
	b, ok := r.branches[name]
	if !ok {
		return errors.NotFound("branch %q not found", name)
	}
	if r.Changed() {
		return errors.PreconditionFailed("uncommitted changes on branch %s", r.CurrentBranch())
	}

	tip, ok := r.graph.Tip(b.root)
	if !ok {
		return errors.Internal("branch %q has no open tip", name)
	}
	b.tip = tip
	r.current = tip
	if p := r.node(tip).Parent(); p.Valid() {
		r.head = p
	}

	r.logger.Debug("checked out", zap.String("branch", name))
	return nil
}

// Branches returns branch names in creation order.
func (r *Repository) Branches() []string {
	return append([]string(nil), r.branchOrder...)
}

func (r *Repository) BranchCount() int { return len(r.branchOrder) }

// Tip returns the open staging node of branch name.
func (r *Repository) Tip(name string) (graph.View, error) {
	b, ok := r.branches[name]
	if !ok {
		return graph.View{}, errors.NotFound("branch %q not found", name)
	}
	v, _ := r.graph.View(b.tip)
	return v, nil
}

// Merge validates a merge of branch name into the current branch. Merging
// itself is not implemented: once the preconditions hold it returns an
// errors.ErrUnimplemented error and the graph is unchanged.
func (r *Repository) Merge(name string, resolutions []Resolution) (string, error) {
	if name == "" {
		return "", errors.InvalidArgument("branch name is empty")
	}
	if _, ok := r.branches[name]; !ok {
		return "", errors.NotFound("branch %q not found", name)
	}
	if name == r.CurrentBranch() {
		return "", errors.InvalidArgument("cannot merge branch %s with itself", name)
	}
	if r.Changed() {
		return "", errors.PreconditionFailed("changes must be committed before merging")
	}

	r.logger.Warn("merge requested but not supported",
		zap.String("branch", name),
		zap.Int("resolutions", len(resolutions)),
	)
	return "", errors.Unimplemented("merging %s into %s is not supported", name, r.CurrentBranch())
}
