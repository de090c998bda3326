package storage

import (
	"strings"
	"time"
)

// maxBaseLength caps the stored filename, in characters, before the
// extension so the result stays comfortably inside filesystem name
// limits.
const maxBaseLength = 180

// FilenameParts feeds BuildStoredFilename. UploadDate is passed in so
// the result is deterministic for a given input.
type FilenameParts struct {
	CompanyName      string
	ProjectCode      string
	ContractNumber   string
	ContractName     string
	UploadDate       time.Time
	FileType         string
	Version          string
	Author           string
	OriginalFilename string
}

// BuildStoredFilename produces the canonical stored name:
//
//	{company}_{projectCode}_{contractNumber}_{contractName}_{YYYYMMDD}_{fileType}_{version}_{author}.{ext}
//
// Every component is sanitized so the result is always a safe single
// path component, regardless of what the user typed.
func BuildStoredFilename(p FilenameParts) string {
	ext := ""
	if idx := strings.LastIndex(p.OriginalFilename, "."); idx >= 0 && idx < len(p.OriginalFilename)-1 {
		ext = "." + strings.ToLower(p.OriginalFilename[idx+1:])
	}

	version := SanitizePart(p.Version)
	if version == "" {
		version = "V1"
	}
	author := SanitizePart(p.Author)
	if author == "" {
		author = "unknown"
	}

	parts := []string{
		fallback(SanitizePart(p.CompanyName), "NoCompany"),
		fallback(SanitizePart(p.ProjectCode), "NoProject"),
		fallback(SanitizePart(p.ContractNumber), "NoContractNo"),
		fallback(SanitizePart(p.ContractName), "NoName"),
		p.UploadDate.Format("20060102"),
		SanitizePart(p.FileType),
		version,
		author,
	}

	base := strings.Join(parts, "_")
	// The cap counts characters, not bytes: company and contract names
	// are often multi-byte and a byte slice could split a rune.
	if runes := []rune(base); len(runes) > maxBaseLength {
		base = string(runes[:maxBaseLength])
	}
	return base + ext
}

// SanitizePart strips characters that must not appear in a filename
// component and replaces spaces with underscores.
func SanitizePart(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			// dropped
		case ' ':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fallback(value, alt string) string {
	if value == "" {
		return alt
	}
	return value
}
