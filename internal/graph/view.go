package graph

import (
	"svc/internal/change"
)

// FileView describes one tracked file.
type FileView struct {
	Name        string `json:"name"`
	Fingerprint uint32 `json:"fingerprint"`
	Size        int    `json:"size"`
	Loaded      bool   `json:"loaded"`
}

// View is a read-only copy of a node for callers outside the repository.
type View struct {
	Handle   NodeID     `json:"-"`
	ID       string     `json:"id,omitempty"`
	Branch   string     `json:"branch"`
	Message  string     `json:"message,omitempty"`
	Sealed   bool       `json:"sealed"`
	Actions  change.Set `json:"actions,omitempty"`
	Files    []FileView `json:"files"`
	Parent   string     `json:"parent,omitempty"`
	Children []string   `json:"children,omitempty"`
}

// View copies the node id. Open children are listed by branch label
// prefixed with "open:".
func (g *Graph) View(id NodeID) (View, bool) {
	n := g.Node(id)
	if n == nil {
		return View{}, false
	}

	v := View{
		Handle:  id,
		ID:      n.commitID,
		Branch:  n.branch,
		Message: n.message,
		Sealed:  n.sealed,
		Files:   make([]FileView, 0, n.files.Len()),
	}
	if n.sealed {
		v.Actions = n.Actions()
	}
	for _, e := range n.files.Entries() {
		v.Files = append(v.Files, FileView{
			Name:        e.Name,
			Fingerprint: e.Fingerprint,
			Size:        e.Content.Len(),
			Loaded:      e.Content.Present(),
		})
	}
	if p := g.Node(n.parent); p != nil {
		v.Parent = p.commitID
	}
	for _, c := range n.children {
		child := g.mustNode(c)
		if child.sealed {
			v.Children = append(v.Children, child.commitID)
		} else {
			v.Children = append(v.Children, "open:"+child.branch)
		}
	}
	return v, true
}
