// Package session provides session management for the gridworld server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session persistence to JSON files or SQLite
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager used by the service layer. Each session
// holds one engine.Simulator together with the config ID it was created
// from and its access times.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs drawn from crypto/rand. Lookups are
// case-insensitive.
//
// Persistence:
//
// SessionPersistence stores a simulator snapshot per session, including the
// position of its random stream, so a restarted server resumes episodes
// exactly. FilePersistence writes one JSON file per session;
// SQLitePersistence keeps them in a single table through modernc.org/sqlite.
// NewPersistence selects a backend by name.
//
// Usage:
//
//	store, err := session.NewPersistence("sqlite", "", "sessions.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", engine.DefaultEnvConfig(), 42)
//	sess, err = manager.Get(sess.ID)
package session
