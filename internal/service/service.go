// Package service serializes access to one Repository and keeps the commit
// journal and the file watcher in step with it.
package service

import (
	"sync"

	"svc/internal/change"
	"svc/internal/content"
	"svc/internal/diff"
	"svc/internal/errors"
	"svc/internal/fsys"
	"svc/internal/graph"
	"svc/internal/journal"
	"svc/internal/repo"

	"go.uber.org/zap"
)

// Watcher reports tracked files touched on disk. *watch.Watcher implements
// it.
type Watcher interface {
	Track(name string) error
	Untrack(name string)
	Touched() []string
	Reset()
}

type Options struct {
	Logger *zap.Logger
	Codec  *content.Codec
	// Journal and Watcher are optional.
	Journal *journal.Journal
	Watcher Watcher
	// DiffContext is the number of context lines in commit diffs.
	DiffContext int
}

// Service is safe for concurrent use. Every call holds one mutex, so
// repository operations never interleave.
type Service struct {
	mu      sync.Mutex
	repo    *repo.Repository
	journal *journal.Journal
	watcher Watcher
	differ  *diff.Engine
	logger  *zap.Logger
}

func New(reader fsys.Reader, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DiffContext == 0 {
		opts.DiffContext = 3
	}
	return &Service{
		repo:    repo.New(reader, repo.WithLogger(logger.Named("repo")), repo.WithCodec(opts.Codec)),
		journal: opts.Journal,
		watcher: opts.Watcher,
		differ:  diff.NewEngine(opts.DiffContext),
		logger:  logger,
	}
}

// FileResult is the outcome of Add and Remove.
type FileResult struct {
	Name        string `json:"name"`
	Fingerprint uint32 `json:"fingerprint"`
}

// CommitResult reports a commit. Committed is false when there was nothing
// to commit.
type CommitResult struct {
	ID        string `json:"id,omitempty"`
	Committed bool   `json:"committed"`
}

// Status summarizes the current node.
type Status struct {
	Branch  string           `json:"branch"`
	Head    string           `json:"head,omitempty"`
	Current string           `json:"current,omitempty"`
	Tracked []graph.FileView `json:"tracked"`
	Changed bool             `json:"changed"`
	Touched []string         `json:"touched,omitempty"`
}

// BranchList lists branches in creation order.
type BranchList struct {
	Current  string   `json:"current"`
	Branches []string `json:"branches"`
}

// FileDiff is the line diff of one modified file.
type FileDiff struct {
	Name   string       `json:"name"`
	Result *diff.Result `json:"result"`
}

// Detail is a commit with line diffs of its Modify actions.
type Detail struct {
	Commit graph.View `json:"commit"`
	Diffs  []FileDiff `json:"diffs,omitempty"`
}

func (s *Service) Add(name string) (FileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, err := s.repo.Add(name)
	if err != nil {
		return FileResult{}, err
	}
	if s.watcher != nil {
		if err := s.watcher.Track(name); err != nil {
			s.logger.Warn("watching file", zap.String("file", name), zap.Error(err))
		}
	}
	s.logger.Info("file added",
		zap.String("file", name),
		zap.Uint32("fingerprint", fp),
		zap.String("branch", s.repo.CurrentBranch()),
	)
	return FileResult{Name: name, Fingerprint: fp}, nil
}

func (s *Service) Remove(name string) (FileResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp, err := s.repo.Remove(name)
	if err != nil {
		return FileResult{}, err
	}
	if s.watcher != nil {
		s.watcher.Untrack(name)
	}
	s.logger.Info("file removed", zap.String("file", name), zap.String("branch", s.repo.CurrentBranch()))
	return FileResult{Name: name, Fingerprint: fp}, nil
}

// Commit returns Committed false and no error when there is nothing to
// commit.
func (s *Service) Commit(message string) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.repo.Commit(message)
	if errors.Is(err, errors.ErrNoOp) {
		s.logger.Info("nothing to commit", zap.String("branch", s.repo.CurrentBranch()))
		return CommitResult{}, nil
	}
	if err != nil {
		return CommitResult{}, err
	}

	if s.journal != nil {
		v, _ := s.repo.Lookup(id)
		if _, err := s.journal.Append(v); err != nil {
			s.logger.Error("journaling commit", zap.String("commit_id", id), zap.Error(err))
		}
	}
	if s.watcher != nil {
		s.watcher.Reset()
	}
	s.logger.Info("committed",
		zap.String("commit_id", id),
		zap.String("branch", s.repo.CurrentBranch()),
	)
	return CommitResult{ID: id, Committed: true}, nil
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.repo.Current()
	st := Status{
		Branch:  cur.Branch,
		Current: cur.ID,
		Tracked: cur.Files,
		Changed: s.repo.Changed(),
	}
	if head, ok := s.repo.Head(); ok {
		st.Head = head.ID
	}
	if s.watcher != nil {
		st.Touched = s.watcher.Touched()
	}
	return st
}

func (s *Service) Branch(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Branch(name); err != nil {
		return err
	}
	s.logger.Info("branch created", zap.String("branch", name))
	return nil
}

func (s *Service) Checkout(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Checkout(name); err != nil {
		return err
	}
	s.trackCurrent()
	s.logger.Info("checked out", zap.String("branch", name))
	return nil
}

func (s *Service) Reset(commitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Reset(commitID); err != nil {
		return err
	}
	s.trackCurrent()
	s.logger.Warn("current node reset to a commit; commits are refused until a checkout",
		zap.String("commit_id", commitID),
	)
	return nil
}

// trackCurrent points the watcher at the files of the new current node.
func (s *Service) trackCurrent() {
	if s.watcher == nil {
		return
	}
	for _, f := range s.repo.Current().Files {
		if err := s.watcher.Track(f.Name); err != nil {
			s.logger.Warn("watching file", zap.String("file", f.Name), zap.Error(err))
		}
	}
}

func (s *Service) Merge(name string, resolutions []repo.Resolution) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Merge(name, resolutions)
}

func (s *Service) Branches() BranchList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BranchList{
		Current:  s.repo.CurrentBranch(),
		Branches: s.repo.Branches(),
	}
}

func (s *Service) Lookup(commitID string) (graph.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Lookup(commitID)
}

func (s *Service) History(commitID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.History(commitID)
}

// Show returns commit commitID with a line diff for every Modify action
// whose content was cached on both sides.
func (s *Service) Show(commitID string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.repo.Lookup(commitID)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{Commit: v}
	for _, a := range v.Actions {
		if a.Kind != change.Modify {
			continue
		}
		before, err := s.repo.FileContent(v.Parent, a.Name)
		if err != nil {
			s.logger.Debug("no parent content for diff", zap.String("file", a.Name), zap.Error(err))
			continue
		}
		after, err := s.repo.FileContent(v.ID, a.Name)
		if err != nil {
			s.logger.Debug("no commit content for diff", zap.String("file", a.Name), zap.Error(err))
			continue
		}
		d.Diffs = append(d.Diffs, FileDiff{Name: a.Name, Result: s.differ.Diff(before, after)})
	}
	return d, nil
}

// Nodes returns every node in depth-first order from the root.
func (s *Service) Nodes() []graph.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	var nodes []graph.View
	s.repo.Walk(func(v graph.View) {
		nodes = append(nodes, v)
	})
	return nodes
}

// Log returns journaled commits, oldest first. Without a journal it is
// empty.
func (s *Service) Log() ([]journal.Record, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.List()
}
