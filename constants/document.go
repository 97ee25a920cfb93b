package constants

import "strings"

// DocumentKinds holds the evidence kinds accepted for profile verification.
var DocumentKinds = []string{"ID_CARD", "PASSPORT", "PROOF_OF_ADDRESS", "BUSINESS_REGISTRATION", "TAX_CERTIFICATE", "OTHER"}

// AllowedContentTypes holds the MIME types accepted for uploaded evidence.
var AllowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// MaxDocumentSize caps a single uploaded evidence file (bytes).
const MaxDocumentSize = 10 << 20

// NormalizeDocumentKind upper-cases the kind and maps unknown values to OTHER.
func NormalizeDocumentKind(kind string) string {
	k := strings.ToUpper(strings.TrimSpace(kind))
	for _, known := range DocumentKinds {
		if k == known {
			return k
		}
	}
	return "OTHER"
}
