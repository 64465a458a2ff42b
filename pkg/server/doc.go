// Package server is the live-preview server: it holds a current virtual
// tree and streams mutation batches to websocket clients that mirror it.
//
// A client connects to /ws and sends a ClientHello. The server answers
// with a ServerHello and then the batch that mounts the current tree under
// protocol.RootID. Every POST /render of a JSON or YAML fixture reconciles
// each client from the tree it last saw to the new one and sends the
// resulting batch. Passes are serialized by one lock, so all clients see
// the same sequence of trees.
//
// Each client has its own remote.Document and its own copy of the tree;
// the tree given to Render is never mounted. Client events are dispatched
// to the fixture's handlers, which WithEventHandler can replace.
//
//	srv := server.New(cfg, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package server
