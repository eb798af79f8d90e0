package player

import (
	"bytes"

	"github.com/dhowden/tag"
)

// readTags returns the title and artist stored in the file's tags, if any.
func readTags(data []byte) (title, creator string) {
	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return "", ""
	}

	creator = m.Artist()
	if creator == "" {
		creator = m.AlbumArtist()
	}
	if creator == "" {
		creator = m.Composer()
	}
	return m.Title(), creator
}
