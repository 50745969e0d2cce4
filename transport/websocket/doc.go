// Package websocket streams environment updates to viewers of a session.
//
// A central Hub tracks the clients attached to each session ID. Every step,
// bulk step and reset handled by the REST API is pushed to the clients of
// that session as a JSON Message carrying the event name, the new EnvState
// and, for steps, the step result.
//
// Clients attach with the session query parameter:
//
//	ws://localhost:8080/ws?session=ab12
//
// Viewers are read-only. Incoming frames are read only to keep the
// connection alive and detect disconnects.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.BroadcastToSession(sessionID, state)
//
// Slow clients whose send buffer is full are dropped instead of blocking
// the broadcaster.
package websocket
