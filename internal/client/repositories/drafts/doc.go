// Package drafts persists listing drafts: a title, the ordered image list
// and, once published, the remote listing id.
//
// Images are stored as a JSON array so their order survives round trips.
// Timestamps are stored as fixed width RFC 3339 text in UTC.
package drafts
