package utils

// IgnoreFileName is the name of the project's ignore file.
const IgnoreFileName = ".ignore"

// GitIgnoreFileName is the name of the Git ignore file.
const GitIgnoreFileName = ".gitignore"

// ConfigFileName is the name of the local configuration file.
const ConfigFileName = ".dirtree.yaml"

// GlobalConfigDirectoryName is the directory under the user's home that holds
// the global configuration file.
const GlobalConfigDirectoryName = ".config/dirtree"

// LoggerInitializationFailedMessageFormat reports a logger construction failure.
const LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"

// ApplicationExecutionFailedMessage prefixes fatal CLI errors.
const ApplicationExecutionFailedMessage = "application execution failed"
