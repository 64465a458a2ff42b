// Package remote provides a dom.Host for documents rendered on the server
// and mirrored by a client.
//
// A Document hands out *Node handles that carry only a protocol.NodeID.
// Each host call is appended to a pending list of protocol ops; after a
// pass the server flushes them as one protocol.Batch and sends it to the
// client, which replays the ops against its real tree. Client events come
// back as protocol.Event values and are delivered with Dispatch to the
// listener they name.
//
//	doc := remote.New()
//	p := patch.New(doc)
//	if _, err := p.Mount(ctx, tree, doc.Root()); err != nil {
//	    return err
//	}
//	frames, err := protocol.EncodeFrames(doc.Flush(), 0)
package remote
