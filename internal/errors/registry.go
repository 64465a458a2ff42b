package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "Unable to establish or maintain the preview connection.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "Received a frame that could not be decoded.",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Frame too large",
		Detail:   "A frame or batch exceeds the configured size limit.",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Unknown mutation op",
		Detail:   "A mutation batch contains an op code this version does not know.",
	},
	"E064": {
		Category: CategoryProtocol,
		Message:  "Unknown listener",
		Detail:   "A client event names a listener that is not registered.",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No reconcile.json found in the given directory.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid config",
		Detail:   "The config file contains invalid JSON or unsupported values.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is outside 1-65535.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Input file not found",
		Detail:   "The fixture file given on the command line does not exist.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command received the wrong number or kind of arguments.",
	},

	// ============================================
	// Fixture Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategoryFixture,
		Message:  "Invalid fixture syntax",
		Detail:   "The fixture is not valid YAML or JSON.",
	},
	"E181": {
		Category: CategoryFixture,
		Message:  "Invalid node",
		Detail:   "A node must be one of {text: ...}, {empty: true} or a mapping with a tag.",
	},
	"E182": {
		Category: CategoryFixture,
		Message:  "Invalid attribute value",
		Detail:   "Attribute values are strings, true (present) or false/null (ignored).",
	},

	// ============================================
	// Invariant Violations (E300-E319)
	// ============================================

	"E300": {
		Category: CategoryInvariant,
		Message:  "Node not attached",
		Detail:   "An old node that must be bound to a live node has none.",
	},
	"E301": {
		Category: CategoryInvariant,
		Message:  "New tree already attached",
		Detail:   "The tree to render holds live nodes; every update needs a freshly built tree.",
	},
	"E302": {
		Category: CategoryInvariant,
		Message:  "Keyed match lost",
		Detail:   "The keyed diff expected a queued node that is not there.",
	},
	"E303": {
		Category: CategoryInvariant,
		Message:  "Parent not attached",
		Detail:   "Children were diffed under an element without a live node.",
	},
	"E304": {
		Category: CategoryInvariant,
		Message:  "Unknown patch command",
		Detail:   "The applier received a command it has no case for.",
	},
	"E305": {
		Category: CategoryInvariant,
		Message:  "Node not in live tree",
		Detail:   "The host reports that a node the tree is bound to is not where the tree says it is.",
	},
	"E306": {
		Category: CategoryInvariant,
		Message:  "Misplaced NoChange marker",
		Detail:   "NoChange is only accepted as the new tree at the root of a pass.",
	},

	// ============================================
	// Platform Errors (E320-E339)
	// ============================================

	"E320": {
		Category: CategoryPlatform,
		Message:  "Create node failed",
	},
	"E321": {
		Category: CategoryPlatform,
		Message:  "Insert node failed",
	},
	"E322": {
		Category: CategoryPlatform,
		Message:  "Remove node failed",
	},
	"E323": {
		Category: CategoryPlatform,
		Message:  "Set attribute failed",
	},
	"E324": {
		Category: CategoryPlatform,
		Message:  "Remove attribute failed",
	},
	"E325": {
		Category: CategoryPlatform,
		Message:  "Set text failed",
	},
	"E326": {
		Category: CategoryPlatform,
		Message:  "Listener update failed",
	},
	"E327": {
		Category: CategoryPlatform,
		Message:  "Set property failed",
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
