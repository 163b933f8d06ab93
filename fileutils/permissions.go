package fileutils

import "os"

// VerifyWritable returns nil if dirPath is a directory we can create files in.
func VerifyWritable(dirPath string) error {
	fil, err := os.CreateTemp(dirPath, "")
	if err != nil {
		return err
	}
	if err := fil.Close(); err != nil {
		return err
	}
	return os.Remove(fil.Name())
}
