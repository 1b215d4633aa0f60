package swayipc

// WorkspaceInfo is one entry of a GET_WORKSPACES reply.
type WorkspaceInfo struct {
	Num     int64  `json:"num"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
	Urgent  bool   `json:"urgent"`
	Visible bool   `json:"visible"`
	Output  string `json:"output"`
}

// Node is a container in the GET_TREE reply. Only the fields the adapters
// read are decoded.
type Node struct {
	ID            int64   `json:"id"`
	Num           int64   `json:"num"` // workspace nodes only
	Name          string  `json:"name"`
	Type          string  `json:"type"` // root, output, workspace, con, floating_con
	AppID         *string `json:"app_id"`
	Focused       bool    `json:"focused"`
	Nodes         []Node  `json:"nodes"`
	FloatingNodes []Node  `json:"floating_nodes"`
}

// leaf reports whether the node is an actual window rather than a split
// container.
func (n *Node) leaf() bool {
	return len(n.Nodes) == 0 && len(n.FloatingNodes) == 0 &&
		(n.Type == "con" || n.Type == "floating_con")
}

// VisitWindows calls fn for every window in the tree along with the
// workspace node it sits on.
func (n *Node) VisitWindows(fn func(ws *Node, win *Node)) {
	n.visit(nil, fn)
}

func (n *Node) visit(ws *Node, fn func(ws *Node, win *Node)) {
	if n.Type == "workspace" {
		ws = n
	}
	if ws != nil && n.leaf() {
		fn(ws, n)
		return
	}
	for i := range n.Nodes {
		n.Nodes[i].visit(ws, fn)
	}
	for i := range n.FloatingNodes {
		n.FloatingNodes[i].visit(ws, fn)
	}
}

// FocusedWindow returns the focused window and its workspace, or nils when
// no window has focus (empty workspace, or focus on a split container).
func (n *Node) FocusedWindow() (ws *Node, win *Node) {
	n.VisitWindows(func(w *Node, c *Node) {
		if c.Focused {
			ws, win = w, c
		}
	})
	return ws, win
}

// InputDevice is one entry of a GET_INPUTS reply. Layout fields are only
// populated for keyboards.
type InputDevice struct {
	Identifier           string   `json:"identifier"`
	Type                 string   `json:"type"`
	XkbLayoutNames       []string `json:"xkb_layout_names"`
	XkbActiveLayoutIndex int      `json:"xkb_active_layout_index"`
}

// Event is one frame from a subscribed connection, payload undecoded: the
// adapters re-query full state on every event instead of trusting the
// embedded diff.
type Event struct {
	Type    uint32
	Payload []byte
}

// runResult is one entry of a RUN_COMMAND reply.
type runResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// subscribeResult is the SUBSCRIBE reply.
type subscribeResult struct {
	Success bool `json:"success"`
}
