// Package service provides the business logic layer for the gridworld server.
//
// The service package implements:
//   - Multi-session environment management
//   - Configuration lookup for new sessions
//   - Step, bulk step and reset processing
//   - Reward queries and step history paging
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST, WebSocket and
// MCP transports. SessionManager stores sessions; ConfigManager loads
// environment configurations.
//
// Architecture:
//
// The service layer sits between the transports and the engine. Each session
// owns one engine.Simulator with its own seeded random stream, so sessions
// are independent. Operations are serialised by a service-wide mutex and the
// session is persisted after every mutation.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Step(ctx, info.ID, engine.ActionRight, engine.ActionLeft, false)
//	if result.Done {
//		gameService.Reset(ctx, info.ID)
//	}
//
// Errors:
//
// Unknown sessions fail with ErrSessionNotFound. Engine errors such as
// engine.ErrInvalidAction and engine.ErrEpisodeOver are returned unchanged so
// transports can map them with errors.Is.
package service
