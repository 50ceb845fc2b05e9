package config

type CredentialStoreType string

const (
	CredentialStoreFile   CredentialStoreType = "file"
	CredentialStoreRedis  CredentialStoreType = "redis"
	CredentialStoreMemory CredentialStoreType = "memory"
)

type SessionConfig interface {
	GetCredentialStore() CredentialStoreType
	GetCredentialKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetCredentialStore() CredentialStoreType {
	switch t := CredentialStoreType(GetEnv("CREDENTIAL_STORE", string(CredentialStoreFile))); t {
	case CredentialStoreFile, CredentialStoreRedis, CredentialStoreMemory:
		return t
	default:
		return CredentialStoreFile
	}
}

// GetCredentialKey is the fixed name of the slot that holds the bearer token.
func (Session) GetCredentialKey() string {
	return "token"
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}
