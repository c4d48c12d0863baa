package consts

import (
	"os"
	"time"
)

// Application identity
const (
	// AppName is used for config/state directory names and log prefixes
	AppName = "aifm"
	// DefaultWorkspaceName is the folder created under the home directory
	// when no working directory has been configured
	DefaultWorkspaceName = "ai-file-manager-workspace"
)

// HTTP server defaults
const (
	// DefaultHost binds the UI to the loopback interface only
	DefaultHost = "localhost"
	// DefaultPort matches the port the browser UI expects out of the box
	DefaultPort = 3000
	// MaxRequestBodySize caps JSON bodies (file contents, structures)
	MaxRequestBodySize = 10 * 1024 * 1024
)

// File permissions used by the file operations service
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// LLM default configurations
const (
	// DefaultGoogleModel is used when no model is configured for the google provider
	DefaultGoogleModel = "gemini-2.0-flash"
	// DefaultTemperature mirrors the generation settings of the chat assistant
	DefaultTemperature = 0.7
	// DefaultTopK limits sampling to the single most likely token
	DefaultTopK = 1
	// DefaultTopP disables nucleus truncation
	DefaultTopP = 1.0
	// DefaultMaxOutputTokens bounds a single assistant reply
	DefaultMaxOutputTokens = 2048
)

// Chat limits
const (
	// MaxPromptListingEntries bounds how many directory entries are embedded in a prompt
	MaxPromptListingEntries = 200
	// MaxErrorResponseChars truncates raw LLM output quoted in errors and logs
	MaxErrorResponseChars = 200
)

// Timeouts for various operations
const (
	// Timeout5Seconds is a 5 second timeout
	Timeout5Seconds = 5 * time.Second
	// Timeout10Seconds is a 10 second timeout
	Timeout10Seconds = 10 * time.Second
	// Timeout60Seconds is a 60 second timeout (1 minute)
	Timeout60Seconds = 60 * time.Second
	// Timeout2Minutes is a 2 minute timeout
	Timeout2Minutes = 2 * time.Minute
)
