package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E039)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Hook called outside component render",
		Detail:   "UseState, UseEffect and UseRerender may only be called while a function component is being evaluated by the engine.",
		DocURL:   "https://mini.vango.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Hook order changed",
		Detail:   "A component must call the same hooks, in the same order, on every render.",
		DocURL:   "https://mini.vango.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "State update on unmounted component",
		Detail:   "The component that owns this setter is no longer part of the fiber tree. The update was ignored.",
		DocURL:   "https://mini.vango.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Render without container",
		Detail:   "CreateRoot needs a host node to mount the tree into.",
		DocURL:   "https://mini.vango.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Invalid element type",
		Detail:   "Element types must be a host tag string, a component function or the text marker.",
		DocURL:   "https://mini.vango.dev/docs/errors/E005",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Host node missing",
		Detail:   "No ancestor fiber owns a host node. The root fiber must be created with a container.",
		DocURL:   "https://mini.vango.dev/docs/errors/E006",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "The received frame could not be decoded.",
		DocURL:   "https://mini.vango.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Unknown mutation op",
		Detail:   "The mutation op is not recognized by this protocol version.",
		DocURL:   "https://mini.vango.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Unknown node",
		Detail:   "The event references a host node id the server does not know about.",
		DocURL:   "https://mini.vango.dev/docs/errors/E062",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "mini.json or mini.yaml contains invalid values.",
		DocURL:   "https://mini.vango.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No mini.json, mini.yaml or mini.yml was found in the project directory.",
		DocURL:   "https://mini.vango.dev/docs/errors/E121",
	},

	// ============================================
	// Storage Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryStorage,
		Message:  "Snapshot store failure",
		Detail:   "Reading or writing a committed-tree snapshot failed.",
		DocURL:   "https://mini.vango.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
		Detail:   "No snapshot exists with the requested id.",
		DocURL:   "https://mini.vango.dev/docs/errors/E141",
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
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
