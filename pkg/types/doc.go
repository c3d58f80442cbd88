// Package types defines the entity model shared by every devora storage
// backend: projects, items, file cards, todos, settings and the
// export/import envelope, together with the Store contract and the
// standard errors returned by its implementations.
//
// Closed sets (item type, command mode, coding agent) are typed string
// enums. Their wire tokens appear only at the storage boundary and decode
// leniently, so a file written by a newer build never fails to load.
package types
