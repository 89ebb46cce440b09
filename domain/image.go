package domain

import (
	"path/filepath"

	"friendly-chat/errors"
)

// ImageFile is a file picked by the user for an image message.
type ImageFile struct {
	Name string
	Data []byte
}

// BlobPath scopes the upload under the owner's id.
// Only the base name of the file is kept so a name cannot escape the user's folder.
func (f ImageFile) BlobPath(uid string) (string, error) {
	name := filepath.Base(filepath.Clean(f.Name))
	switch name {
	case ".", "..", string(filepath.Separator), "":
		return "", errors.ErrInvalidPath
	}
	return uid + "/" + name, nil
}
