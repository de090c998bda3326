package service

import (
	"fmt"

	"github.com/fszn/contracts-service/internal/model"
)

// Decision is the outcome of a file-access evaluation. It always
// carries a complete audit record; callers persist it whether or not
// access was granted.
type Decision struct {
	Allowed       bool
	DenialMessage string
	AuditAction   string
	AuditMessage  string
	AuditExtra    map[string]interface{}
}

// EvaluateDownload applies the role-based download rules, first match
// wins:
//
//   - admin / boss / software_engineer: unrestricted
//   - customer: public contract/tech documents only
//   - anyone else: files without an owner role, or owned by their role
func EvaluateDownload(user *model.Principal, contract *model.Contract, file *model.ProjectFile) Decision {
	role := ""
	if user != nil {
		role = user.NormalizedRole()
	}

	decision := Decision{
		Allowed:      true,
		AuditAction:  "file.download",
		AuditMessage: fmt.Sprintf("downloaded file: %s", file.OriginalFilename),
		AuditExtra: map[string]interface{}{
			"contract_id": contract.ID,
			"file_type":   string(file.FileType),
			"version":     file.Version,
			"is_public":   file.IsPublic,
		},
	}

	switch role {
	case model.RoleAdmin, model.RoleBoss, model.RoleSoftwareEngineer:
		return decision

	case model.RoleCustomer:
		if file.IsPublic && (file.FileType == model.FileTypeContract || file.FileType == model.FileTypeTech) {
			return decision
		}
		return Decision{
			Allowed:       false,
			DenialMessage: "no permission to download this file",
			AuditAction:   "file.download_denied",
			AuditMessage:  "customer attempted to download a non-public file",
			AuditExtra: map[string]interface{}{
				"contract_id": contract.ID,
				"file_type":   string(file.FileType),
				"is_public":   file.IsPublic,
			},
		}

	default:
		// A nil user can only reach unowned files. The HTTP layer
		// always supplies a principal, so this stricter reading never
		// shows through the API.
		if file.OwnerRole == "" || (user != nil && file.OwnerRole == user.Role) {
			return decision
		}
		var userRole interface{}
		if user != nil && user.Role != "" {
			userRole = user.Role
		}
		return Decision{
			Allowed:       false,
			DenialMessage: "you can only download files uploaded by your own department",
			AuditAction:   "file.download_denied",
			AuditMessage:  "staff attempted to download another department's file",
			AuditExtra: map[string]interface{}{
				"contract_id": contract.ID,
				"file_type":   string(file.FileType),
				"owner_role":  file.OwnerRole,
				"user_role":   userRole,
			},
		}
	}
}

// EvaluateExport gates the whole-contract excel/pdf exports. They
// bundle the finance records, which customers cannot reach file by
// file, so customers are denied outright; every staff role may export.
func EvaluateExport(user *model.Principal, contract *model.Contract, format string) Decision {
	role := ""
	if user != nil {
		role = user.NormalizedRole()
	}

	if role == model.RoleCustomer {
		return Decision{
			Allowed:       false,
			DenialMessage: "no permission to export this contract",
			AuditAction:   "contract.export_denied",
			AuditMessage:  "customer attempted to export a contract summary",
			AuditExtra: map[string]interface{}{
				"contract_id":  contract.ID,
				"project_code": contract.ProjectCode,
				"format":       format,
			},
		}
	}
	return Decision{
		Allowed:      true,
		AuditAction:  "contract.export",
		AuditMessage: fmt.Sprintf("exported contract summary as %s", format),
		AuditExtra: map[string]interface{}{
			"contract_id":  contract.ID,
			"project_code": contract.ProjectCode,
			"format":       format,
		},
	}
}

// EvaluateDelete allows the uploader plus admin/boss to soft-delete.
func EvaluateDelete(user *model.Principal, contract *model.Contract, file *model.ProjectFile) Decision {
	role := ""
	if user != nil {
		role = user.NormalizedRole()
	}

	if user != nil && (user.UserID == file.UploaderID || role == model.RoleAdmin || role == model.RoleBoss) {
		return Decision{
			Allowed:      true,
			AuditAction:  "file.delete_soft",
			AuditMessage: fmt.Sprintf("soft-deleted file: %s", file.OriginalFilename),
			AuditExtra: map[string]interface{}{
				"contract_id":     contract.ID,
				"stored_filename": file.StoredFilename,
				"file_type":       string(file.FileType),
			},
		}
	}

	var userID, userRole interface{}
	if user != nil {
		userID = user.UserID
		if user.Role != "" {
			userRole = user.Role
		}
	}
	return Decision{
		Allowed:       false,
		DenialMessage: "no permission to delete this file",
		AuditAction:   "file.delete_denied",
		AuditMessage:  "attempted to delete a file without permission",
		AuditExtra: map[string]interface{}{
			"contract_id":     contract.ID,
			"stored_filename": file.StoredFilename,
			"file_type":       string(file.FileType),
			"uploader_id":     file.UploaderID,
			"user_id":         userID,
			"user_role":       userRole,
		},
	}
}
