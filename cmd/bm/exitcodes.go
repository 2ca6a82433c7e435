package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths)
	ExitDataError   = 3 // Data error (missing column, malformed table)
	ExitNoRegistry  = 4 // No registry year available for the corpus
	ExitLocked      = 5 // Another run holds the output lock
)
