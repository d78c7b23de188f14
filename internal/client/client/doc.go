// Package client bootstraps the client's collaborators.
//
// It opens and migrates the local SQLite database (InitDatabase,
// RunMigrations), groups the repositories built on it (Repositories) and
// selects the upload backend from configuration (NewUploader).
//
// Errors: ErrUnknownBackend is returned for an unsupported backend name.
package client
