package catalog

// StagedFile is the raw payload of a file the user picked but has not yet
// uploaded. It lives only in memory; the draft store must never serialize it.
type StagedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}
