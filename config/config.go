package config

type AppConfig struct {
	LogConfig *LogConfig
	CLIConfig *CLIConfig
}

func New() *AppConfig {
	return &AppConfig{
		LogConfig: NewLogConfig(),
		CLIConfig: NewCLIConfig(),
	}
}
