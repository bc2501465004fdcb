package backend

import (
	"fmt"

	"google.golang.org/api/option"

	"plenio/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	credentialsJSON, credentialsFile := appConfig.FirebaseCredentials()
	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		FirebaseProjectID:       appConfig.FirebaseProjectID,
		FirebaseCredentialsFile: credentialsFile,
		FirebaseCredentialsJSON: credentialsJSON,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case FirestoreBackend:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("Firebase project ID is required for firestore backend")
		}
	case MemoryBackend:
		// nothing to configure
	}

	return nil
}

// ClientOptions returns the Google client options for the configured
// service account. With neither set the client libraries fall back to
// application default credentials.
func (c Config) ClientOptions() []option.ClientOption {
	switch {
	case c.FirebaseCredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(c.FirebaseCredentialsJSON))}
	case c.FirebaseCredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(c.FirebaseCredentialsFile)}
	default:
		return nil
	}
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SQLiteBackend, FirestoreBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
