package domain

// Metadata holds the caption and keyword fields carried in an image's
// embedded IPTC/EXIF block. Keywords keep their original order.
type Metadata struct {
	Caption  string   `json:"caption"`
	Keywords []string `json:"keywords"`
}

// IsEmpty reports whether the metadata carries neither a caption nor keywords.
func (m Metadata) IsEmpty() bool {
	return m.Caption == "" && len(m.Keywords) == 0
}
