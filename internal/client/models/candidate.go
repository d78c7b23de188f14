// Package models defines the values that flow through the image ingestion
// pipeline and the local draft records that own its results.
package models

// Candidate is one file proposed for upload. A candidate accepted into a
// batch is never mutated; transformations (compression) produce a new value.
type Candidate struct {
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// NewCandidate builds a candidate whose Size matches the content length.
func NewCandidate(name, mediaType string, data []byte) Candidate {
	return Candidate{Name: name, MediaType: mediaType, Size: int64(len(data)), Data: data}
}

// Progress is one byte-level transfer observation.
type Progress struct {
	Loaded     int64
	Total      int64
	Percentage int
}

// NewProgress computes Percentage as round(loaded/total*100). Total must be
// positive; the percentage is clamped to 0..100.
func NewProgress(loaded, total int64) Progress {
	p := Progress{Loaded: loaded, Total: total}
	if total > 0 {
		p.Percentage = int((loaded*200 + total) / (total * 2))
	}
	if p.Percentage > 100 {
		p.Percentage = 100
	}
	if p.Percentage < 0 {
		p.Percentage = 0
	}
	return p
}
