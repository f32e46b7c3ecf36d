package rules

import "github.com/PASTER-G/CI-guard/internal/ir"

func unencryptedStorage() Rule {
	return Rule{
		ID:       "unencrypted_storage",
		Summary:  "Storage resource has encryption at rest disabled.",
		Kind:     ir.KindStorage,
		Severity: ir.SeverityMedium,
		Check: func(r *ir.Resource) bool {
			return r.Storage != nil && !r.Storage.Encrypted
		},
		Message: func(r *ir.Resource) string {
			return "Обнаружен незашифрованный диск. Требуется включить шифрование."
		},
	}
}
