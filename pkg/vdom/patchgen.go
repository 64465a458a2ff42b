package vdom

import (
	"iter"

	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/dom"
)

// CommandOp is the kind of a patch command.
type CommandOp uint8

const (
	CmdAppendEl        CommandOp = iota + 1 // Attach NewEl as the last child
	CmdAppendText                           // Attach NewText as the last child
	CmdInsertEl                             // Attach NewEl before Before
	CmdInsertText                           // Attach NewText before Before
	CmdPatchEl                              // Update OldEl in place to match NewEl
	CmdPatchText                            // Update OldText in place to match NewText
	CmdReplaceElByEl                        // Swap OldEl for a freshly built NewEl
	CmdReplaceElByText                      // Swap OldEl for NewText
	CmdReplaceTextByEl                      // Swap OldText for NewEl
	CmdRemoveEl                             // Detach OldEl
	CmdRemoveText                           // Detach OldText
)

// String returns the command name.
func (op CommandOp) String() string {
	switch op {
	case CmdAppendEl:
		return "AppendEl"
	case CmdAppendText:
		return "AppendText"
	case CmdInsertEl:
		return "InsertEl"
	case CmdInsertText:
		return "InsertText"
	case CmdPatchEl:
		return "PatchEl"
	case CmdPatchText:
		return "PatchText"
	case CmdReplaceElByEl:
		return "ReplaceElByEl"
	case CmdReplaceElByText:
		return "ReplaceElByText"
	case CmdReplaceTextByEl:
		return "ReplaceTextByEl"
	case CmdRemoveEl:
		return "RemoveEl"
	case CmdRemoveText:
		return "RemoveText"
	default:
		return "Unknown"
	}
}

// Command is a single child-list operation.
// Only the fields relevant to Op are set.
type Command struct {
	Op      CommandOp
	OldEl   *El
	OldText *Text
	NewEl   *El
	NewText *Text
	Before  dom.Node // For CmdInsertEl and CmdInsertText
}

// String renders the command for logs and test output.
func (c Command) String() string {
	s := c.Op.String()
	switch {
	case c.OldEl != nil:
		s += " " + c.OldEl.Node().String()
	case c.OldText != nil:
		s += " " + c.OldText.Node().String()
	}
	switch {
	case c.NewEl != nil:
		s += " -> " + c.NewEl.Node().String()
	case c.NewText != nil:
		s += " -> " + c.NewText.Node().String()
	}
	return s
}

// PatchKey identifies which nodes may be matched against each other.
// Elements compare by namespace, tag and explicit key; all text nodes share
// one key; Empty nodes have none.
type PatchKey struct {
	Text      bool
	Namespace Namespace
	Tag       string
	Key       string
	HasKey    bool
}

// PatchKeyOf returns the patch key of v. The boolean is false for Empty.
func PatchKeyOf(v *VNode) (PatchKey, bool) {
	switch {
	case v == nil:
		return PatchKey{}, false
	case v.Kind == KindElement:
		return PatchKey{Namespace: v.El.Namespace, Tag: v.El.Tag, Key: v.El.Key, HasKey: v.El.HasKey}, true
	case v.Kind == KindText:
		return PatchKey{Text: true}, true
	default:
		return PatchKey{}, false
	}
}

// CanPatch reports whether old can be updated in place to become new.
// Custom elements are always rebuilt.
func CanPatch(old, new *El) bool {
	return old.Namespace == new.Namespace &&
		old.Tag == new.Tag &&
		old.HasKey == new.HasKey &&
		old.Key == new.Key &&
		!new.Custom
}

// nodeQueue is a FIFO of sibling nodes. Requeued nodes go to the front.
type nodeQueue []*VNode

func (q *nodeQueue) push(v *VNode) { *q = append(*q, v) }

func (q *nodeQueue) requeue(v *VNode) {
	*q = append(nodeQueue{v}, *q...)
}

func (q *nodeQueue) pop() (*VNode, bool) {
	if len(*q) == 0 {
		return nil, false
	}
	v := (*q)[0]
	(*q)[0] = nil
	*q = (*q)[1:]
	return v, true
}

// PatchGen lazily computes the commands that turn one child list into
// another. It runs in keyless mode, pairing children by position, until it
// meets a keyed element; from then on it matches children by PatchKey.
//
// A PatchGen is single use: once Next reports false it stays exhausted.
type PatchGen struct {
	oldSrc []*VNode
	newSrc []*VNode
	oldPos int
	newPos int

	oldQueue nodeQueue
	newQueue nodeQueue

	keyed    bool
	matchKey PatchKey
	hasMatch bool
	matchOld *VNode
	matchNew *VNode
}

// NewPatchGen returns a generator over the old and new child lists.
// Nodes are handed out through commands; the caller owns applying them.
func NewPatchGen(old, new []*VNode) *PatchGen {
	return &PatchGen{oldSrc: old, newSrc: new}
}

// All returns the remaining commands as an iterator.
func (g *PatchGen) All() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		for {
			cmd, ok := g.Next()
			if !ok || !yield(cmd) {
				return
			}
		}
	}
}

// Next returns the next command, or false when both lists are exhausted.
func (g *PatchGen) Next() (Command, bool) {
	if !g.keyed {
		return g.nextKeyless()
	}
	if g.hasMatch {
		return g.nextKeyed()
	}
	if g.hasOld() || g.hasNew() {
		if key, ok := g.findMatching(); ok {
			g.matchKey, g.hasMatch = key, true
			return g.nextKeyed()
		}
	}
	return g.nextRemaining()
}

func (g *PatchGen) hasOld() bool { return g.oldPos < len(g.oldSrc) }
func (g *PatchGen) hasNew() bool { return g.newPos < len(g.newSrc) }

func (g *PatchGen) takeOld() (*VNode, bool) {
	if !g.hasOld() {
		return nil, false
	}
	v := g.oldSrc[g.oldPos]
	g.oldPos++
	return v, true
}

func (g *PatchGen) takeNew() (*VNode, bool) {
	if !g.hasNew() {
		return nil, false
	}
	v := g.newSrc[g.newPos]
	g.newPos++
	return v, true
}

func (g *PatchGen) nextKeyless() (Command, bool) {
	var (
		old, new     *VNode
		hasOld, hasN bool
	)
	for {
		old, hasOld = g.oldQueue.pop()
		if !hasOld {
			old, hasOld = g.takeOld()
		}
		new, hasN = g.takeNew()
		if hasOld && hasN && old.IsEmpty() && new.IsEmpty() {
			continue
		}
		break
	}

	switch {
	case hasOld && hasN:
		if !old.HasKey() && !new.HasKey() {
			return g.patchOrReplace(old, new)
		}
		g.keyed = true
		oldKey, _ := PatchKeyOf(old)
		newKey, newOk := PatchKeyOf(new)
		if newOk && !old.IsEmpty() && oldKey == newKey {
			g.matchKey, g.hasMatch = newKey, true
		}
		if !old.IsEmpty() {
			g.oldQueue.requeue(old)
		}
		if !new.IsEmpty() {
			g.newQueue.requeue(new)
		}
		return g.Next()
	case hasN:
		return g.appendNode(new)
	case hasOld:
		return g.removeNode(old)
	default:
		return Command{}, false
	}
}

// nextKeyed advances towards the held matching pair. Nodes ahead of the
// match on the new side are inserted before the old match, nodes ahead of
// it on the old side are removed.
func (g *PatchGen) nextKeyed() (Command, bool) {
	switch {
	case g.matchOld == nil && g.matchNew == nil:
		old := g.mustPop(&g.oldQueue, "old")
		new := g.mustPop(&g.newQueue, "new")
		oldMatch, newMatch := g.matches(old), g.matches(new)
		switch {
		case oldMatch && newMatch:
			g.matchOld, g.matchNew = old, new
			return g.nextKeyed()
		case oldMatch:
			g.matchOld = old
			return g.insertNode(new, mustHandle(old))
		case newMatch:
			g.matchNew = new
			return g.removeNode(old)
		}
		return g.patchOrReplace(old, new)

	case g.matchNew == nil:
		new := g.mustPop(&g.newQueue, "new")
		if g.matches(new) {
			g.matchNew = new
			return g.nextKeyed()
		}
		return g.insertNode(new, mustHandle(g.matchOld))

	case g.matchOld == nil:
		old := g.mustPop(&g.oldQueue, "old")
		if g.matches(old) {
			g.matchOld = old
			return g.nextKeyed()
		}
		return g.removeNode(old)

	default:
		old, new := g.matchOld, g.matchNew
		g.matchOld, g.matchNew = nil, nil
		g.hasMatch = false
		return g.patchOrReplace(old, new)
	}
}

// nextRemaining pairs up whatever is still queued once no shared key is
// left, then appends or removes the surplus.
func (g *PatchGen) nextRemaining() (Command, bool) {
	old, hasOld := g.oldQueue.pop()
	new, hasNew := g.newQueue.pop()
	switch {
	case hasOld && hasNew:
		return g.patchOrReplace(old, new)
	case hasOld:
		return g.removeNode(old)
	case hasNew:
		return g.appendNode(new)
	default:
		return Command{}, false
	}
}

// findMatching pulls nodes from the sources into the queues until a key has
// been seen on both sides. It pulls old only while the new queue is longer
// and new otherwise, so a tie goes to the new side.
func (g *PatchGen) findMatching() (PatchKey, bool) {
	seenOld := make(map[PatchKey]struct{}, len(g.oldQueue))
	seenNew := make(map[PatchKey]struct{}, len(g.newQueue))
	for _, v := range g.oldQueue {
		if k, ok := PatchKeyOf(v); ok {
			seenOld[k] = struct{}{}
		}
	}
	for _, v := range g.newQueue {
		if k, ok := PatchKeyOf(v); ok {
			seenNew[k] = struct{}{}
		}
	}

	for g.hasOld() || g.hasNew() {
		pickOld := g.hasOld() && (!g.hasNew() || len(g.oldQueue) < len(g.newQueue))
		if pickOld {
			v, _ := g.takeOld()
			g.oldQueue.push(v)
			if k, ok := PatchKeyOf(v); ok {
				if _, seen := seenNew[k]; seen {
					return k, true
				}
				seenOld[k] = struct{}{}
			}
			continue
		}
		v, _ := g.takeNew()
		g.newQueue.push(v)
		if k, ok := PatchKeyOf(v); ok {
			if _, seen := seenOld[k]; seen {
				return k, true
			}
			seenNew[k] = struct{}{}
		}
	}
	return PatchKey{}, false
}

func (g *PatchGen) matches(v *VNode) bool {
	k, ok := PatchKeyOf(v)
	return ok && k == g.matchKey
}

func (g *PatchGen) mustPop(q *nodeQueue, side string) *VNode {
	v, ok := q.pop()
	if !ok {
		panic(errors.Invariant("E302", "the "+side+" queue ran dry while a match was pending"))
	}
	return v
}

// nextLiveSibling scans the old side forward for the first node bound to a
// live node: queued nodes first, then the source. Nodes read from the
// source are queued so they are still diffed later.
func (g *PatchGen) nextLiveSibling() dom.Node {
	for _, v := range g.oldQueue {
		if h := v.Handle(); h != nil {
			return h
		}
	}
	for {
		v, ok := g.takeOld()
		if !ok {
			return nil
		}
		g.oldQueue.push(v)
		if h := v.Handle(); h != nil {
			return h
		}
	}
}

func (g *PatchGen) patchOrReplace(old, new *VNode) (Command, bool) {
	switch {
	case old.IsEmpty():
		if new.IsEmpty() {
			return g.Next()
		}
		if before := g.nextLiveSibling(); before != nil {
			return g.insertNode(new, before)
		}
		return g.appendNode(new)

	case old.Kind == KindElement:
		switch {
		case new.IsEmpty():
			return Command{Op: CmdRemoveEl, OldEl: old.El}, true
		case new.Kind == KindElement:
			if CanPatch(old.El, new.El) {
				return Command{Op: CmdPatchEl, OldEl: old.El, NewEl: new.El}, true
			}
			return Command{Op: CmdReplaceElByEl, OldEl: old.El, NewEl: new.El}, true
		default:
			return Command{Op: CmdReplaceElByText, OldEl: old.El, NewText: new.Text}, true
		}

	default:
		switch {
		case new.IsEmpty():
			return Command{Op: CmdRemoveText, OldText: old.Text}, true
		case new.Kind == KindElement:
			return Command{Op: CmdReplaceTextByEl, OldText: old.Text, NewEl: new.El}, true
		default:
			return Command{Op: CmdPatchText, OldText: old.Text, NewText: new.Text}, true
		}
	}
}

func (g *PatchGen) appendNode(v *VNode) (Command, bool) {
	switch {
	case v.IsEmpty():
		return g.Next()
	case v.Kind == KindElement:
		return Command{Op: CmdAppendEl, NewEl: v.El}, true
	default:
		return Command{Op: CmdAppendText, NewText: v.Text}, true
	}
}

func (g *PatchGen) insertNode(v *VNode, before dom.Node) (Command, bool) {
	switch {
	case v.IsEmpty():
		return g.Next()
	case v.Kind == KindElement:
		return Command{Op: CmdInsertEl, NewEl: v.El, Before: before}, true
	default:
		return Command{Op: CmdInsertText, NewText: v.Text, Before: before}, true
	}
}

func (g *PatchGen) removeNode(v *VNode) (Command, bool) {
	switch {
	case v.IsEmpty():
		return g.Next()
	case v.Kind == KindElement:
		return Command{Op: CmdRemoveEl, OldEl: v.El}, true
	default:
		return Command{Op: CmdRemoveText, OldText: v.Text}, true
	}
}

// mustHandle returns the live node of an old node that must be attached.
func mustHandle(v *VNode) dom.Node {
	h := v.Handle()
	if h == nil {
		panic(errors.Invariant("E300", "old node "+v.String()+" is not attached"))
	}
	return h
}
