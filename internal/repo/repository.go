// Package repo is the in-memory repository: one commit graph, its branch
// and commit indices, and the operations that move between them.
//
// A Repository is not safe for concurrent use. Callers serialize access.
package repo

import (
	"fmt"

	"svc/internal/content"
	"svc/internal/errors"
	"svc/internal/fsys"
	"svc/internal/graph"
	"svc/internal/hashing"
	"svc/internal/snapshot"

	"go.uber.org/zap"
)

// DefaultBranch labels the root node.
const DefaultBranch = "master"

type branchRef struct {
	name string
	// root is the open node the branch was created with.
	root graph.NodeID
	// tip is the branch's current open node.
	tip graph.NodeID
}

// Repository owns the graph. The indices hold handles into it and never
// own nodes.
type Repository struct {
	graph   *graph.Graph
	src     snapshot.Source
	logger  *zap.Logger
	current graph.NodeID
	head    graph.NodeID

	commits     map[string]graph.NodeID
	commitOrder []string
	branches    map[string]*branchRef
	branchOrder []string
}

// Option configures a Repository.
type Option func(*Repository)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCodec sets the codec used for cached file content.
func WithCodec(codec *content.Codec) Option {
	return func(r *Repository) {
		r.src.Codec = codec
	}
}

// New initializes a repository with an open root node on DefaultBranch.
func New(reader fsys.Reader, opts ...Option) *Repository {
	if reader == nil {
		reader = fsys.New(nil)
	}
	r := &Repository{
		graph:    graph.New(DefaultBranch),
		src:      snapshot.Source{Reader: reader},
		logger:   zap.NewNop(),
		head:     graph.None,
		commits:  make(map[string]graph.NodeID),
		branches: make(map[string]*branchRef),
	}
	for _, apply := range opts {
		apply(r)
	}

	root := r.graph.Root()
	r.current = root
	r.branches[DefaultBranch] = &branchRef{name: DefaultBranch, root: root, tip: root}
	r.branchOrder = append(r.branchOrder, DefaultBranch)
	return r
}

func (r *Repository) node(id graph.NodeID) *graph.Node {
	return r.graph.Node(id)
}

func (r *Repository) headFiles() *snapshot.Snapshot {
	if h := r.node(r.head); h != nil {
		return h.Files()
	}
	return nil
}

// Add starts tracking name in the current node and returns its fingerprint.
func (r *Repository) Add(name string) (uint32, error) {
	if name == "" {
		return 0, errors.InvalidArgument("file name is empty")
	}
	files := r.node(r.current).Files()
	if files.Has(name) {
		return 0, errors.Conflict("file %q is already tracked", name)
	}
	entry, err := r.src.Load(name)
	if err != nil {
		return 0, fmt.Errorf("adding %s: %w", name, err)
	}
	files.Add(entry)
	return entry.Fingerprint, nil
}

// Remove stops tracking name and returns its last known fingerprint.
func (r *Repository) Remove(name string) (uint32, error) {
	if name == "" {
		return 0, errors.InvalidArgument("file name is empty")
	}
	entry, ok := r.node(r.current).Files().Remove(name)
	if !ok {
		return 0, errors.NotFound("file %q is not tracked", name)
	}
	return entry.Fingerprint, nil
}

// Changed reports whether the current node differs from head by the
// fingerprint-sum check. A commit reached by Reset holds no staged work and
// never counts as changed, so branch and checkout stay available from it.
func (r *Repository) Changed() bool {
	cur := r.node(r.current)
	if cur.Sealed() {
		return false
	}
	return r.src.Changed(cur.Files(), r.headFiles())
}

// Commit seals the current node and opens a new staging child on the same
// branch. It returns an errors.ErrNoOp error when there is nothing to
// commit.
//
// Commit ids are unique across the whole graph. Because an id depends only
// on the message and the actions, committing the same message and actions
// on two branches yields the same id and the second commit fails with
// errors.ErrConflict; reword the message to commit it.
func (r *Repository) Commit(message string) (string, error) {
	cur := r.node(r.current)
	if cur.Sealed() {
		return "", errors.PreconditionFailed("current node is commit %s; check out a branch before committing", cur.CommitID())
	}

	headFiles := r.headFiles()
	if headFiles == nil && cur.Files().Len() == 0 {
		return "", errors.NoOp("nothing to commit: no files are tracked")
	}
	if headFiles != nil && !r.src.Changed(cur.Files(), headFiles) {
		return "", errors.NoOp("nothing to commit")
	}

	work := cur.Files().Clone()
	pruned := r.src.PruneMissing(work)

	res, err := r.src.Diff(work, headFiles)
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}

	id := hashing.CommitID(message, res.Actions)
	if prev, dup := r.commits[id]; dup {
		return "", errors.Conflict("commit id %s already names a commit on branch %s", id, r.node(prev).Branch())
	}

	if err := r.graph.Seal(r.current, message, id, res.Actions, res.Files); err != nil {
		return "", errors.Internal("committing: %v", err)
	}
	child, err := r.graph.Spawn(r.current, cur.Branch(), r.src.Copy(res.Files))
	if err != nil {
		return "", errors.Internal("committing: %v", err)
	}

	r.commits[id] = r.current
	r.commitOrder = append(r.commitOrder, id)
	r.head = r.current
	r.current = child
	if b, ok := r.branches[cur.Branch()]; ok {
		b.tip = child
	}

	if len(pruned) > 0 {
		r.logger.Info("untracked locally deleted files",
			zap.String("commit_id", id),
			zap.Strings("files", pruned),
		)
	}
	r.logger.Debug("committed",
		zap.String("commit_id", id),
		zap.String("branch", cur.Branch()),
		zap.Int("actions", len(res.Actions)),
	)
	return id, nil
}

// Reset moves the current pointer onto an existing commit. Later adds and
// removes edit that commit's file set in place; no branch is created.
func (r *Repository) Reset(commitID string) error {
	if commitID == "" {
		return errors.InvalidArgument("commit id is empty")
	}
	id, ok := r.commits[commitID]
	if !ok {
		return errors.NotFound("commit %s not found", commitID)
	}
	r.current = id
	r.logger.Debug("reset", zap.String("commit_id", commitID))
	return nil
}

// Lookup returns the sealed commit with the given id.
func (r *Repository) Lookup(commitID string) (graph.View, error) {
	if commitID == "" {
		return graph.View{}, errors.InvalidArgument("commit id is empty")
	}
	id, ok := r.commits[commitID]
	if !ok {
		return graph.View{}, errors.NotFound("commit %s not found", commitID)
	}
	v, _ := r.graph.View(id)
	return v, nil
}

// History returns the ids of every ancestor of commitID, parent first.
func (r *Repository) History(commitID string) ([]string, error) {
	if commitID == "" {
		return nil, errors.InvalidArgument("commit id is empty")
	}
	id, ok := r.commits[commitID]
	if !ok {
		return nil, errors.NotFound("commit %s not found", commitID)
	}
	var ids []string
	for _, a := range r.graph.Ancestors(id) {
		if n := r.node(a); n.Sealed() {
			ids = append(ids, n.CommitID())
		}
	}
	return ids, nil
}

// FileContent returns the cached bytes of name in commit commitID.
func (r *Repository) FileContent(commitID, name string) ([]byte, error) {
	id, ok := r.commits[commitID]
	if !ok {
		return nil, errors.NotFound("commit %s not found", commitID)
	}
	entry, ok := r.node(id).Files().Get(name)
	if !ok {
		return nil, errors.NotFound("file %q is not part of commit %s", name, commitID)
	}
	if !entry.Content.Present() {
		return nil, errors.NotFound("content of %q was not loaded in commit %s", name, commitID)
	}
	return r.src.Bytes(entry)
}

// Current returns the node that adds and removes apply to.
func (r *Repository) Current() graph.View {
	v, _ := r.graph.View(r.current)
	return v
}

// Root returns the node created with the repository.
func (r *Repository) Root() graph.View {
	v, _ := r.graph.View(r.graph.Root())
	return v
}

// Head returns the last sealed commit of the active branch.
func (r *Repository) Head() (graph.View, bool) {
	return r.graph.View(r.head)
}

// CurrentBranch is the branch label of the current node.
func (r *Repository) CurrentBranch() string {
	return r.node(r.current).Branch()
}

// Commits returns every commit id in commit order.
func (r *Repository) Commits() []string {
	return append([]string(nil), r.commitOrder...)
}

func (r *Repository) CommitCount() int { return len(r.commitOrder) }

// Walk visits every node of the graph depth-first from the root.
func (r *Repository) Walk(fn func(graph.View)) {
	r.graph.Walk(func(id graph.NodeID, _ *graph.Node) {
		v, _ := r.graph.View(id)
		fn(v)
	})
}

// Depth is the number of parent links between commitID and the root.
func (r *Repository) Depth(commitID string) (int, error) {
	id, ok := r.commits[commitID]
	if !ok {
		return 0, errors.NotFound("commit %s not found", commitID)
	}
	return r.graph.Depth(id), nil
}
