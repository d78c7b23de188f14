package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewProgress_Rounds(t *testing.T) {
	tests := []struct {
		loaded, total int64
		want          int
	}{
		{0, 100, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 200, 1},
		{1, 201, 0},
		{100, 100, 100},
		{150, 100, 100},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewProgress(tt.loaded, tt.total).Percentage, "%d/%d", tt.loaded, tt.total)
	}
}

func TestNewCandidate_SizeFromData(t *testing.T) {
	c := NewCandidate("a.png", "image/png", []byte{1, 2, 3})
	assert.Equal(t, int64(3), c.Size)
}

func TestUploadResult_Variants(t *testing.T) {
	ok := Succeeded("https://cdn/x.jpg", "svg-marketplace/x")
	assert.True(t, ok.Success())
	assert.Empty(t, ok.ErrorMessage())

	empty := Succeeded("", "id")
	assert.False(t, empty.Success())
	assert.Equal(t, ReasonMalformedResponse, empty.Err.Reason)
	assert.Empty(t, empty.URL)

	st := FailedStatus(413, "Upload failed with status 413")
	assert.False(t, st.Success())
	assert.Equal(t, 413, st.Err.StatusCode)
	assert.Equal(t, "Upload failed with status 413", st.ErrorMessage())
	assert.EqualError(t, st.Err, "Upload failed with status 413")
}

func TestUploadState_Terminal(t *testing.T) {
	assert.False(t, UploadState{Status: SlotUploading, Uploading: true}.Terminal())
	assert.True(t, UploadState{Status: SlotSucceeded, URL: "u"}.Terminal())
	assert.True(t, UploadState{Status: SlotFailed, Error: "e"}.Terminal())
}
