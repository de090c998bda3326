package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fszn/contracts-service/internal/audit"
	"github.com/fszn/contracts-service/internal/model"
	"github.com/fszn/contracts-service/internal/storage"
)

// FileStorage is the filesystem collaborator. Implementations must
// treat names as opaque single path components; the service only ever
// passes sanitized stored filenames.
type FileStorage interface {
	Save(name string, content io.Reader) (int64, error)
	SizeOf(name string) (int64, error)
	Exists(name string) bool
	Open(name string) (io.ReadCloser, error)
}

// roleUploadTypes is the per-role allow-list of uploadable file types.
var roleUploadTypes = map[string][]model.FileType{
	model.RoleAdmin:              {model.FileTypeContract, model.FileTypeTech, model.FileTypeDrawing, model.FileTypeInvoice, model.FileTypeTicket},
	model.RoleBoss:               {model.FileTypeContract, model.FileTypeTech, model.FileTypeDrawing, model.FileTypeInvoice, model.FileTypeTicket},
	model.RoleSoftwareEngineer:   {model.FileTypeDrawing, model.FileTypeTech},
	model.RoleMechanicalEngineer: {model.FileTypeDrawing, model.FileTypeTech},
	model.RoleElectricalEngineer: {model.FileTypeDrawing, model.FileTypeTech},
	model.RoleSales:              {model.FileTypeContract, model.FileTypeTech, model.FileTypeTicket},
	model.RoleFinance:            {model.FileTypeInvoice},
	model.RoleProcurement:        {model.FileTypeInvoice},
}

// defaultUploadTypes applies to roles missing from the map.
var defaultUploadTypes = []model.FileType{model.FileTypeContract, model.FileTypeTech, model.FileTypeDrawing, model.FileTypeInvoice, model.FileTypeTicket}

func uploadTypesFor(role string) []model.FileType {
	if types, ok := roleUploadTypes[model.NormalizeRole(role)]; ok {
		return types
	}
	return defaultUploadTypes
}

// Files handles uploads, downloads and soft deletes. Every access —
// including denied ones — writes an operation-log row.
type Files struct {
	store             Store
	storage           FileStorage
	allowedExtensions map[string]struct{}
}

func NewFiles(store Store, fileStorage FileStorage, allowedExtensions []string) *Files {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimSpace(ext))] = struct{}{}
	}
	return &Files{store: store, storage: fileStorage, allowedExtensions: allowed}
}

func (s *Files) extensionAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	_, ok := s.allowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

type UploadFileInput struct {
	FileType         string
	Version          string
	IsPublic         bool
	OriginalFilename string
	ContentType      string
	Content          io.Reader
}

func (s *Files) Upload(ctx context.Context, actor model.Principal, contractID int64, in UploadFileInput) (*model.ProjectFile, error) {
	if in.OriginalFilename == "" || in.Content == nil {
		return nil, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	fileType, ok := model.ParseFileType(in.FileType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown file type %q", ErrInvalidInput, in.FileType)
	}
	// Drawings come out of CAD tooling with all sorts of extensions, so
	// the allow-list only applies to the other types.
	if fileType != model.FileTypeDrawing && !s.extensionAllowed(in.OriginalFilename) {
		return nil, fmt.Errorf("%w: unsupported file extension", ErrInvalidInput)
	}

	allowed := false
	for _, t := range uploadTypesFor(actor.Role) {
		if t == fileType {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: role is not allowed to upload %s files", ErrPermissionDenied, fileType)
	}

	// Only contract and tech documents may be exposed to customers.
	isPublic := in.IsPublic && (fileType == model.FileTypeContract || fileType == model.FileTypeTech)

	version := strings.TrimSpace(in.Version)
	if version == "" {
		version = "V1"
	}

	var file *model.ProjectFile
	err := s.store.InTx(ctx, func(tx Store) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return notFoundOr(err)
		}

		storedName := storage.BuildStoredFilename(storage.FilenameParts{
			CompanyName:      contract.Company.Name,
			ProjectCode:      contract.ProjectCode,
			ContractNumber:   contract.ContractNumber,
			ContractName:     contract.Name,
			UploadDate:       time.Now().UTC(),
			FileType:         string(fileType),
			Version:          version,
			Author:           actor.Username,
			OriginalFilename: in.OriginalFilename,
		})

		size, err := s.storage.Save(storedName, in.Content)
		if err != nil {
			return fmt.Errorf("save file: %w", err)
		}

		file = &model.ProjectFile{
			ContractID:       contract.ID,
			UploaderID:       actor.UserID,
			FileType:         fileType,
			Version:          version,
			Author:           actor.Username,
			OriginalFilename: in.OriginalFilename,
			StoredFilename:   storedName,
			ContentType:      in.ContentType,
			FileSize:         size,
			IsPublic:         isPublic,
			OwnerRole:        actor.Role,
		}
		if err := tx.CreateFile(ctx, file); err != nil {
			return err
		}

		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     "file.upload",
			TargetType: "ProjectFile",
			TargetID:   file.ID,
			Message:    fmt.Sprintf("uploaded file: %s", in.OriginalFilename),
			Extra: map[string]interface{}{
				"contract_id": contract.ID,
				"file_type":   string(fileType),
				"version":     version,
				"is_public":   isPublic,
			},
		})
		return tx.AppendOperationLog(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Download evaluates access, records the decision, and hands back the
// file row plus its content on success. The audit row is persisted even
// when access is denied: the denial is the outcome being recorded.
func (s *Files) Download(ctx context.Context, actor model.Principal, contractID, fileID int64) (*model.ProjectFile, io.ReadCloser, error) {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	file, err := s.store.GetFile(ctx, fileID, contractID)
	if err != nil {
		return nil, nil, notFoundOr(err)
	}
	if file.IsDeleted {
		return nil, nil, ErrNotFound
	}

	decision := EvaluateDownload(&actor, contract, file)
	if err := s.recordDecision(ctx, actor, fileID, decision); err != nil {
		return nil, nil, err
	}
	if !decision.Allowed {
		return nil, nil, fmt.Errorf("%w: %s", ErrPermissionDenied, decision.DenialMessage)
	}

	content, err := s.storage.Open(file.StoredFilename)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return file, content, nil
}

// Delete soft-deletes a file; the row and stored content stay around.
func (s *Files) Delete(ctx context.Context, actor model.Principal, contractID, fileID int64) error {
	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return notFoundOr(err)
	}
	file, err := s.store.GetFile(ctx, fileID, contractID)
	if err != nil {
		return notFoundOr(err)
	}
	if file.IsDeleted {
		return ErrNotFound
	}

	decision := EvaluateDelete(&actor, contract, file)
	if !decision.Allowed {
		if err := s.recordDecision(ctx, actor, fileID, decision); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrPermissionDenied, decision.DenialMessage)
	}

	return s.store.InTx(ctx, func(tx Store) error {
		if err := tx.SoftDeleteFile(ctx, file.ID); err != nil {
			return err
		}
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     decision.AuditAction,
			TargetType: "ProjectFile",
			TargetID:   file.ID,
			Message:    decision.AuditMessage,
			Extra:      decision.AuditExtra,
		})
		return tx.AppendOperationLog(ctx, row)
	})
}

func (s *Files) List(ctx context.Context, contractID int64) ([]model.ProjectFile, error) {
	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, notFoundOr(err)
	}
	return s.store.ListFiles(ctx, contractID)
}

func (s *Files) recordDecision(ctx context.Context, actor model.Principal, fileID int64, decision Decision) error {
	return s.store.InTx(ctx, func(tx Store) error {
		row, _ := audit.Build(audit.Entry{
			Actor:      &actor,
			Action:     decision.AuditAction,
			TargetType: "ProjectFile",
			TargetID:   fileID,
			Message:    decision.AuditMessage,
			Extra:      decision.AuditExtra,
		})
		return tx.AppendOperationLog(ctx, row)
	})
}
