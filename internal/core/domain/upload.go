package domain

// UploadedFile is a raw export handed to the re-upload orchestrator.
type UploadedFile struct {
	Name    string
	Content []byte
}

// Size returns the content length in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Content))
}
