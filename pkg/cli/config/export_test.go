package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewCalendarForTest creates a Calendar config for testing purposes
func NewCalendarForTest(calendarID, keyBase64, keyFile, timezone string) *Calendar {
	return &Calendar{
		calendarID: calendarID,
		keyBase64:  keyBase64,
		keyFile:    keyFile,
		timezone:   timezone,
	}
}

// NewTTSForTest creates a TTS config for testing purposes
func NewTTSForTest(apiKey, voiceID string) *TTS {
	return &TTS{
		apiKey:  apiKey,
		voiceID: voiceID,
	}
}

// NewPolicyForTest creates a Policy config for testing purposes
func NewPolicyForTest(path string) *Policy {
	return &Policy{path: path}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{
		backend:    backend,
		projectID:  projectID,
		databaseID: databaseID,
	}
}
