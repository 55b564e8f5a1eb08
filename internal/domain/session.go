package domain

import "time"

// Session ties one uploaded asset to its editable metadata state. The raw
// bytes live only here for the lifetime of the session; nothing is written
// to disk or object storage.
type Session struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	Existing  Metadata  `json:"existing"`
	Generated *Metadata `json:"generated,omitempty"`

	Working *WorkingSet `json:"working"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Data holds the original image bytes and never leaves the process.
	Data []byte `json:"-"`
}

// ExportFilename derives the download name by prefixing the original one.
func (s *Session) ExportFilename() string {
	return "tagged_" + s.Filename
}
