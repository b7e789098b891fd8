package pemcodec

import (
	"github.com/spf13/afero"
)

// Decodes every object from the PEM file at path. The file handle
// is released on all exit paths.
func DecodeFile(fs afero.Fs, path string) ([]Object, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeAll(f)
}

// Encodes the provided objects to the file at path, one armored
// block per object, truncating any previous contents
func EncodeFile(fs afero.Fs, path string, objects ...any) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	for _, object := range objects {
		if err := Encode(f, object); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
