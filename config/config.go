package config

const (
	BuildVersion = "0.2.1"
	Environment  = "production"

	GoogleCloudSpanner = "projects/paperhand/instances/pump-one/databases/pump"

	RedisEngineCacheAddress  = "127.0.0.1:6379"
	RedisEngineCacheDatabase = 2

	BugsnagAPIKey = ""

	HTTPListenAddress = ":7000"
)
