package model

// ClassEntry is a registered class. Entries are toggled, never deleted.
type ClassEntry struct {
	ID        int64  `json:"id"`
	ClassName string `json:"class_name"`
	IsActive  bool   `json:"is_active"`
}

// CreateClassRequest is the payload for registering a class.
type CreateClassRequest struct {
	ClassName string `json:"class_name" binding:"required,max=100"`
}

// SetClassActiveRequest toggles a class.
type SetClassActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
