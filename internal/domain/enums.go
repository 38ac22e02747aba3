package domain

// Severity grades an audit finding or a field conflict.
type Severity string

const (
	// SeverityInfo marks non-failing notes, e.g. a checksum that passed
	// only after OCR substitution corrections.
	SeverityInfo Severity = "info"
	// SeverityWarning marks resolvable mismatches shown for review but not
	// blocking automated acceptance.
	SeverityWarning Severity = "warning"
	// SeverityCritical marks findings that block auto-approval until a
	// human resolves them.
	SeverityCritical Severity = "critical"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleReviewer UserRole = "reviewer"
)

// ReviewAction names an entry in a document's review trail.
type ReviewAction string

const (
	ReviewActionParsed       ReviewAction = "parsed"
	ReviewActionParseFailed  ReviewAction = "parse_failed"
	ReviewActionAutoApproved ReviewAction = "auto_approved"
	ReviewActionFlagged      ReviewAction = "flagged"
	ReviewActionApproved     ReviewAction = "approved"
	ReviewActionRejected     ReviewAction = "rejected"
)

// FileStatus represents the lifecycle of an uploaded file.
type FileStatus string

const (
	FileStatusPending  FileStatus = "pending"
	FileStatusUploaded FileStatus = "uploaded"
	FileStatusFailed   FileStatus = "failed"
	FileStatusDeleted  FileStatus = "deleted"
)

// ParsingStatus tracks the extraction pipeline state of a document.
type ParsingStatus string

const (
	ParsingStatusPending    ParsingStatus = "pending"
	ParsingStatusProcessing ParsingStatus = "processing"
	ParsingStatusCompleted  ParsingStatus = "completed"
	ParsingStatusFailed     ParsingStatus = "failed"
)

// ApprovalStatus tracks what happened to a document after validation.
type ApprovalStatus string

const (
	// ApprovalStatusPendingReview means the audit or the consensus flagged
	// something a human must look at.
	ApprovalStatusPendingReview ApprovalStatus = "pending_review"
	// ApprovalStatusAutoApproved means the document came through clean:
	// no critical audit checks and no critical conflicts.
	ApprovalStatusAutoApproved ApprovalStatus = "auto_approved"
	ApprovalStatusApproved     ApprovalStatus = "approved"
	ApprovalStatusRejected     ApprovalStatus = "rejected"
)
