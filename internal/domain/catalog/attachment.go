package catalog

// AttachmentDescriptor is a flat record for an auxiliary file that was
// uploaded by a separate flow. No local staging applies here.
type AttachmentDescriptor struct {
	TypeID      string `json:"type_id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Description string `json:"description"`
}
