package model

import "time"

type FileType string

const (
	FileTypeContract FileType = "contract"
	FileTypeTech     FileType = "tech"
	FileTypeDrawing  FileType = "drawing"
	FileTypeInvoice  FileType = "invoice"
	FileTypeTicket   FileType = "ticket"
)

func ParseFileType(raw string) (FileType, bool) {
	switch FileType(raw) {
	case FileTypeContract, FileTypeTech, FileTypeDrawing, FileTypeInvoice, FileTypeTicket:
		return FileType(raw), true
	}
	return "", false
}

// ProjectFile rows are soft-deleted on the normal delete path; only the
// contract cascade removes them for real.
type ProjectFile struct {
	ID               int64     `json:"id"`
	ContractID       int64     `json:"contract_id"`
	UploaderID       int64     `json:"uploader_id"`
	FileType         FileType  `json:"file_type"`
	Version          string    `json:"version"`
	Author           string    `json:"author"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	ContentType      string    `json:"content_type"`
	FileSize         int64     `json:"file_size"`
	IsPublic         bool      `json:"is_public"`
	OwnerRole        string    `json:"owner_role"` // uploader's role at upload time
	IsDeleted        bool      `json:"is_deleted"`
	CreatedAt        time.Time `json:"created_at"`
}
