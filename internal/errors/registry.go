package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No storefront.json or storefront.yaml was found in the directory.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or not recognised.",
	},

	// ============================================
	// Storage Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryStorage,
		Message:  "Unknown storage backend",
		Detail:   "Supported backends are memory, file, redis, sql and s3.",
	},
	"E121": {
		Category: CategoryStorage,
		Message:  "Storage backend unavailable",
		Detail:   "The key-value store could not be opened or reached.",
	},
	"E122": {
		Category: CategoryStorage,
		Message:  "Storage quota exceeded",
		Detail:   "The value does not fit in the remaining storage quota.",
	},

	// ============================================
	// I18n Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryI18n,
		Message:  "Invalid translation table",
		Detail:   "The translation file must map language codes to key/string maps.",
	},
	"E141": {
		Category: CategoryI18n,
		Message:  "Unsupported language",
		Detail:   "The language is not present in the translation table.",
	},
	"E142": {
		Category: CategoryI18n,
		Message:  "Missing translations",
		Detail:   "One or more translation keys have no string in a supported language.",
	},

	// ============================================
	// Validation Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryValidation,
		Message:  "Unknown product",
		Detail:   "The product ID is not in the catalog.",
	},
	"E161": {
		Category: CategoryValidation,
		Message:  "Invalid request body",
		Detail:   "The request body is not valid JSON for this endpoint.",
	},

	// ============================================
	// CLI Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryCLI,
		Message:  "Missing visitor",
		Detail:   "The command needs a visitor ID to select whose storage to use.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
