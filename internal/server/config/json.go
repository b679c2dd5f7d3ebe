package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/culturehub/internal/flagx"
	"github.com/dmitrijs2005/culturehub/internal/timex"
)

// JsonConfig is the shape of the optional JSON config file. Durations use
// timex.Duration so both "1h" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from a zero value.
type JsonConfig struct {
	HTTPAddr             string          `json:"http_addr"`
	GRPCAddr             string          `json:"grpc_addr"`
	Storage              string          `json:"storage"`
	DatabaseDSN          string          `json:"database_dsn"`
	MongoURI             string          `json:"mongo_uri"`
	MongoDatabase        string          `json:"mongo_database"`
	SecretKey            string          `json:"secret_key"`
	TokenLifetime        *timex.Duration `json:"token_lifetime"`
	BcryptCost           int             `json:"bcrypt_cost"`
	HashConcurrency      int             `json:"hash_concurrency"`
	ResetTokenLifetime   *timex.Duration `json:"reset_token_lifetime"`
	UniformResetResponse *bool           `json:"uniform_reset_response"`
	FrontendURL          string          `json:"frontend_url"`
	SMTPHost             string          `json:"smtp_host"`
	SMTPPort             int             `json:"smtp_port"`
	SMTPUsername         string          `json:"smtp_username"`
	SMTPPassword         string          `json:"smtp_password"`
	MailFrom             string          `json:"mail_from"`
	S3RootUser           string          `json:"s3_root_user"`
	S3RootPassword       string          `json:"s3_root_password"`
	S3Bucket             string          `json:"s3_bucket"`
	S3Region             string          `json:"s3_region"`
	S3BaseEndpoint       string          `json:"s3_base_endpoint"`
	S3PublicURL          string          `json:"s3_public_url"`
	CORSOrigins          []string        `json:"cors_origins"`
	LogLevel             string          `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field present in it onto config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenLifetime != nil {
		config.TokenLifetime = c.TokenLifetime.Duration
	}
	if c.ResetTokenLifetime != nil {
		config.ResetTokenLifetime = c.ResetTokenLifetime.Duration
	}
	if c.UniformResetResponse != nil {
		config.UniformResetResponse = *c.UniformResetResponse
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashConcurrency != 0 {
		config.HashConcurrency = c.HashConcurrency
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
