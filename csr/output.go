package csr

import (
	"os"
	"path/filepath"

	"github.com/effective-security/xlog"
	"github.com/spf13/afero"
)

// DefaultOutput is the default file name for the DER encoded request
const DefaultOutput = "csr.der"

// WriteDER serializes the request and writes it to the file,
// overwriting existing content
func WriteDER(fs afero.Fs, path string, req *Request) error {
	der, err := SerializeToDER(req)
	if err != nil {
		return err
	}
	return WriteFile(fs, path, der, 0644)
}

// WriteFile writes the data to the file, creating the parent folder
// if needed
func WriteFile(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	if path == "" {
		return newf(ErrFileWrite, "output file is not specified")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return markf(err, ErrFileWrite, "unable to create folder: %s", dir)
		}
	}
	if err := afero.WriteFile(fs, path, data, perm); err != nil {
		return markf(err, ErrFileWrite, "unable to write file: %s", path)
	}
	logger.KV(xlog.INFO, "file", path, "size", len(data))
	return nil
}
