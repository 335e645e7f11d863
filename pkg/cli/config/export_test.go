package config

// NewAppConfigForTest creates an AppConfig reading path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID, baseURL string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
		baseURL:   baseURL,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewRepositoryForTest creates a Repository config using backend with its
// local defaults
func NewRepositoryForTest(backend, dataDir, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		dataDir:    dataDir,
		sqlitePath: sqlitePath,
	}
}
