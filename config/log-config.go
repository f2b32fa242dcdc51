package config

type LogConfig struct {
	// Level is a logrus level name (panic, fatal, error, warn, info, debug, trace).
	Level string
}

func NewLogConfig() *LogConfig {
	return &LogConfig{
		Level: "warn",
	}
}
