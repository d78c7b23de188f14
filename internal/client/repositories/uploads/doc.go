// Package uploads keeps the ledger of objects this client stored remotely.
//
// Each successful upload is recorded with its content digest. Removing an
// image from a draft never deletes the remote object; the record is marked
// orphaned instead so it can be reported and cleaned up out of band.
package uploads
