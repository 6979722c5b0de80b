package config

// EnvPrefix is passed to envconfig; all variables already carry the full
// CAPITL_ prefix in their tags, so the processing prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "CAPITL_DB_DSN"
	EnvDBHost = "CAPITL_DB_HOST"
	EnvDBUser = "CAPITL_DB_USER"
	EnvDBName = "CAPITL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
