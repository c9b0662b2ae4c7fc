// Package server serves mini applications to browsers over WebSocket.
//
// Each WebSocket connection gets a Session: a fiber engine rendering into a
// RemoteHost, driven by its own idle.Loop. The remote host records every
// host call as a protocol.Mutation. After each commit the session sends the
// recorded batch to the client, which applies it to the real DOM. DOM
// events for nodes with listeners come back as event frames and are
// dispatched on the session loop.
//
// # Architecture
//
//	Browser                         Server
//	   │                               │
//	   │─── GET / ────────────────────►│ page + client.js
//	   │─── WS /ws ───────────────────►│ Session: engine + loop
//	   │◄── FrameMutations (mount) ────│
//	   │─── FrameEvent (click) ───────►│ loop.Submit(handler)
//	   │◄── FrameMutations (commit) ───│
//	   │                               │
//
// # Threading
//
// The engine and its RemoteHost are only touched from the session's loop
// goroutine. The read goroutine decodes frames and submits work to the
// loop. Writes to the connection are serialized by the session.
//
// # Usage
//
//	srv := server.New(func() *element.Element {
//	    return element.CreateElement(demo.App, nil)
//	}, server.DefaultServerConfig())
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
