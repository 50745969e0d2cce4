// Package api provides the HTTP REST API for gridworld sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "seed": 42})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Episode Operations:
//   - GET /api/sessions/{id}/state - Current env state
//   - POST /api/sessions/{id}/step - One step for both agents
//   - POST /api/sessions/{id}/bulk-step - Up to MaxBulkSteps steps, stops at episode end
//   - POST /api/sessions/{id}/reset - Start a new episode
//   - GET /api/sessions/{id}/reward - Reward recomputed from the latest positions
//   - GET /api/sessions/{id}/history - Paged step trace (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List environment configs
//   - POST /api/configs - Save a config
//   - GET /api/configs/{name} - Get a config
//
// Other:
//   - GET /health - Liveness
//   - GET /ws?session=ID - WebSocket broadcasts for a session
//
// Actions are given as an index (0 down, 1 left, 2 up, 3 right) or as the
// direction name:
//
//	{"prey_action": 3, "predator_action": "left", "reset": false}
//
//	{"steps": [{"prey_action": 0, "predator_action": 1}], "reset": true}
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code:
//
//	{"error": "invalid action: index 7 not in [0,4)", "code": 400}
//
// Unknown sessions and configs map to 404, invalid actions, configs and
// oversized bulk requests to 400, and stepping a finished episode to 409.
package api
