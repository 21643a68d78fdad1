package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the accounts database
	DefaultDatabasePath = "./auth-service.db"
)
