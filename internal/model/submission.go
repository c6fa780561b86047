package model

import "time"

// TimestampLayout is the local wall-clock format stored in submissions.timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Submission is one uploaded file plus its class/group metadata.
// Rows are never mutated after insert.
type Submission struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	ClassName string `json:"class_name"`
	GroupName string `json:"group_name"`
	Notes     string `json:"notes"`
	FilePath  string `json:"file_path"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
}

// FormatTimestamp renders t the way submissions.timestamp stores it.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// SubmissionRow is a ledger row as shown in the admin listing. A missing
// backing file is reported on the row instead of failing the listing.
type SubmissionRow struct {
	Submission
	FileAvailable bool   `json:"file_available"`
	FileError     string `json:"file_error,omitempty"`
}

// SubmissionFilter holds the admin listing filters. Empty values and the
// "all" sentinels both mean no filter.
type SubmissionFilter struct {
	ClassName string `form:"class"`
	GroupName string `form:"group"`
}

// GroupSummary counts ledger rows per (class, group) pair.
type GroupSummary struct {
	ClassName string `json:"class_name"`
	GroupName string `json:"group_name"`
	Count     int    `json:"jumlah_tugas"`
}

// FilterOptions are the choices offered by the admin filter selects.
type FilterOptions struct {
	Classes []string `json:"classes"`
	Groups  []string `json:"groups"`
}

// SubmitRequest is the multipart form of a student submission. Files are
// read separately from the "files" field. Presence is checked by the
// service so that a closed registry is reported first.
type SubmitRequest struct {
	ClassName string `form:"class_name" json:"class_name" binding:"max=100"`
	GroupName string `form:"group_name" json:"group_name" binding:"max=150"`
	Notes     string `form:"notes" json:"notes" binding:"max=2000"`
}
