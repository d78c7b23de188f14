// Package common contains shared constants and sentinel errors used across
// gophmarket components.
package common

// MiB is the number of bytes in one mebibyte.
const MiB = 1024 * 1024

// DefaultUploadFolder is the remote namespace uploaded listing images land in.
const DefaultUploadFolder = "svg-marketplace"
