package service

import (
	"testing"

	"github.com/fszn/contracts-service/internal/model"
)

func policyContract() *model.Contract {
	return &model.Contract{ID: 7, ProjectCode: "P-001"}
}

func policyFile(fileType model.FileType, isPublic bool, ownerRole string) *model.ProjectFile {
	return &model.ProjectFile{
		ID:               11,
		ContractID:       7,
		UploaderID:       42,
		FileType:         fileType,
		IsPublic:         isPublic,
		OwnerRole:        ownerRole,
		OriginalFilename: "spec.pdf",
		StoredFilename:   "Acme_P-001_HT-1_Line_20240105_tech_V1_li.pdf",
	}
}

func TestEvaluateDownload(t *testing.T) {
	cases := []struct {
		name        string
		role        string
		file        *model.ProjectFile
		allowed     bool
		auditAction string
	}{
		{
			name:        "admin downloads anything",
			role:        model.RoleAdmin,
			file:        policyFile(model.FileTypeInvoice, false, model.RoleFinance),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "boss downloads anything",
			role:        model.RoleBoss,
			file:        policyFile(model.FileTypeDrawing, false, model.RoleMechanicalEngineer),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "software engineer unrestricted",
			role:        model.RoleSoftwareEngineer,
			file:        policyFile(model.FileTypeInvoice, false, model.RoleFinance),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "customer downloads public contract",
			role:        model.RoleCustomer,
			file:        policyFile(model.FileTypeContract, true, model.RoleSales),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "customer denied private tech doc",
			role:        model.RoleCustomer,
			file:        policyFile(model.FileTypeTech, false, model.RoleSales),
			allowed:     false,
			auditAction: "file.download_denied",
		},
		{
			name:        "customer denied public drawing",
			role:        model.RoleCustomer,
			file:        policyFile(model.FileTypeDrawing, true, model.RoleMechanicalEngineer),
			allowed:     false,
			auditAction: "file.download_denied",
		},
		{
			name:        "staff matches owner role",
			role:        model.RoleFinance,
			file:        policyFile(model.FileTypeInvoice, false, model.RoleFinance),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "staff downloads unowned file",
			role:        model.RoleSales,
			file:        policyFile(model.FileTypeContract, false, ""),
			allowed:     true,
			auditAction: "file.download",
		},
		{
			name:        "staff denied other department's file",
			role:        model.RoleSales,
			file:        policyFile(model.FileTypeInvoice, false, model.RoleFinance),
			allowed:     false,
			auditAction: "file.download_denied",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &model.Principal{UserID: 1, Username: "li", Role: tc.role}
			decision := EvaluateDownload(user, policyContract(), tc.file)
			if decision.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v", decision.Allowed, tc.allowed)
			}
			if decision.AuditAction != tc.auditAction {
				t.Fatalf("AuditAction = %q, want %q", decision.AuditAction, tc.auditAction)
			}
			if !decision.Allowed && decision.DenialMessage == "" {
				t.Fatalf("denied decision must carry a denial message")
			}
		})
	}
}

func TestEvaluateDownloadNormalizesRole(t *testing.T) {
	user := &model.Principal{UserID: 1, Role: " Admin "}
	decision := EvaluateDownload(user, policyContract(), policyFile(model.FileTypeInvoice, false, model.RoleFinance))
	if !decision.Allowed {
		t.Fatalf("role with odd casing must still match admin")
	}
}

func TestEvaluateDownloadNilUser(t *testing.T) {
	if decision := EvaluateDownload(nil, policyContract(), policyFile(model.FileTypeContract, false, "")); !decision.Allowed {
		t.Fatalf("nil user must reach unowned files")
	}
	if decision := EvaluateDownload(nil, policyContract(), policyFile(model.FileTypeInvoice, false, model.RoleFinance)); decision.Allowed {
		t.Fatalf("nil user must not reach owned files")
	}
}

func TestEvaluateExport(t *testing.T) {
	cases := []struct {
		name        string
		role        string
		allowed     bool
		auditAction string
	}{
		{name: "admin exports", role: model.RoleAdmin, allowed: true, auditAction: "contract.export"},
		{name: "sales exports", role: model.RoleSales, allowed: true, auditAction: "contract.export"},
		{name: "finance exports", role: model.RoleFinance, allowed: true, auditAction: "contract.export"},
		{name: "customer denied", role: model.RoleCustomer, allowed: false, auditAction: "contract.export_denied"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &model.Principal{UserID: 1, Username: "li", Role: tc.role}
			decision := EvaluateExport(user, policyContract(), "xlsx")
			if decision.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v", decision.Allowed, tc.allowed)
			}
			if decision.AuditAction != tc.auditAction {
				t.Fatalf("AuditAction = %q, want %q", decision.AuditAction, tc.auditAction)
			}
			if decision.AuditExtra["format"] != "xlsx" {
				t.Fatalf("AuditExtra format = %v, want xlsx", decision.AuditExtra["format"])
			}
		})
	}
}

func TestEvaluateDelete(t *testing.T) {
	cases := []struct {
		name        string
		user        *model.Principal
		allowed     bool
		auditAction string
	}{
		{
			name:        "uploader deletes own file",
			user:        &model.Principal{UserID: 42, Role: model.RoleSales},
			allowed:     true,
			auditAction: "file.delete_soft",
		},
		{
			name:        "admin deletes any file",
			user:        &model.Principal{UserID: 1, Role: model.RoleAdmin},
			allowed:     true,
			auditAction: "file.delete_soft",
		},
		{
			name:        "boss deletes any file",
			user:        &model.Principal{UserID: 2, Role: model.RoleBoss},
			allowed:     true,
			auditAction: "file.delete_soft",
		},
		{
			name:        "other staff denied",
			user:        &model.Principal{UserID: 9, Role: model.RoleFinance},
			allowed:     false,
			auditAction: "file.delete_denied",
		},
		{
			name:        "nil user denied",
			user:        nil,
			allowed:     false,
			auditAction: "file.delete_denied",
		},
	}

	file := policyFile(model.FileTypeContract, false, model.RoleSales)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := EvaluateDelete(tc.user, policyContract(), file)
			if decision.Allowed != tc.allowed {
				t.Fatalf("Allowed = %v, want %v", decision.Allowed, tc.allowed)
			}
			if decision.AuditAction != tc.auditAction {
				t.Fatalf("AuditAction = %q, want %q", decision.AuditAction, tc.auditAction)
			}
		})
	}
}
