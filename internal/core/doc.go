// Package core provides the session service behind the pole map.
//
// A session is created for every uploaded spreadsheet. It owns the loaded
// [poles.PoleTable] and the [Settings] used to draw it, and every operation
// on it runs under the session's lock:
//
//	sum, err := svc.Load(ctx, "postes.xlsx", file)    // parse, open session
//	res, err := svc.Render(ctx, sum.ID)               // view + directives
//	res, err = svc.EditCoordinates(ctx, sum.ID, 3, lat, lon)
//
// Rendering always places markers over the whole table with the full
// settings, so the result of an edit is indistinguishable from a fresh load
// of the edited file.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages with [MapError]:
//
//   - FILE001-FILE006: file errors (size, format, empty table)
//   - VAL001-VAL004: validation errors (columns, index, coordinates, settings)
//   - SES001-SES002: session errors (expired, store full)
//   - UPL001-UPL003: load errors (busy, cancelled, timeout)
//
// # Audit Trail
//
// Loads, edits and settings changes are recorded through an [AuditRecorder].
// [PgRecorder] writes them to PostgreSQL; without a database the service uses
// [NopRecorder].
package core
