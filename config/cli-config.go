package config

type CLIConfig struct {
	NoColor bool
}

func NewCLIConfig() *CLIConfig {
	return &CLIConfig{
		NoColor: false,
	}
}
