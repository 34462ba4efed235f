package main

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError     = 2 // Configuration error (unreadable or invalid config)
	ExitDataError       = 3 // Data error (unreadable input, no usable reference entries)
	ExitSectionNotFound = 4 // Document has no recognized references heading
	ExitCatalogError    = 5 // Catalog unavailable or nothing could be resolved
)
