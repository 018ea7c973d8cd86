package config

// Config file (global)
var Config JSONConfig

// JSONConfig structure based on config.json
type JSONConfig struct {
	Origin    string      `json:"origin"`
	Port      string      `json:"port"`
	Version   string      `json:"version"`
	Secret    string      `json:"secret"`
	Keyspace  string      `json:"keyspace"`
	ScyllaURI string      `json:"scyllaURI"`
	RedisURI  string      `json:"redisURI"`
	MinIO     MinIOConfig `json:"minIO"`
}

// MinIOConfig structure is the config for MinIO connection
type MinIOConfig struct {
	Endpoint  string `json:"endpoint"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Bucket    string `json:"bucket"`
	PublicURL string `json:"publicURL"`
}
