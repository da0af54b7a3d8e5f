// Package todo defines users, tasks and the payloads exchanged with the API.
//
// The wire shapes follow the JSONPlaceholder resources:
//
//	GET /users  -> [{"id": 1, "name": "Leanne Graham", ...}]
//	GET /todos  -> [{"id": 1, "title": "...", "completed": false, "userId": 1}]
//	POST /todos <- {"title": "...", "completed": false, "userId": 3}
//
// # Validation
//
// Two kinds of validation live here:
//
//   - NewTask.Validate checks a create request before it is sent
//     (non-empty title, positive user id).
//   - ValidatePayload checks a response body against embedded JSON Schemas
//     (draft 2020-12). Violations are reported with dot/bracket paths such
//     as "[3].title".
//
// # Ownership
//
// A task's owner is the first user whose id equals the task's userId.
// Tasks without a matching user have an empty owner name.
package todo
