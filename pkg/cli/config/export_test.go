package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, signingSecret string) *Slack {
	return &Slack{
		botToken:      botToken,
		signingSecret: signingSecret,
	}
}

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

func NewLLMForTest(apiKey, baseURL, model string, gemini *Gemini) *LLM {
	x := &LLM{apiKey: apiKey, baseURL: baseURL, model: model}
	if gemini != nil {
		x.gemini = *gemini
	}
	return x
}

func NewOAuthForTest(clientID, clientSecret, redirectURI, scope string) *OAuth {
	return &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      "https://accounts.example.com/oauth/v2/auth",
		tokenURL:     "https://accounts.example.com/oauth/v2/token",
		scope:        scope,
		timeout:      time.Second,
	}
}

func NewDeskForTest(ticketBaseURL, approvalEndpoint string) *Desk {
	return &Desk{
		ticketBaseURL:    ticketBaseURL,
		approvalEndpoint: approvalEndpoint,
		timeout:          time.Second,
	}
}

func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend}
}

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewAppForTest(path string) *App {
	return &App{path: path}
}

func NewStaticForTest(bucket, prefix string) *Static {
	return &Static{bucket: bucket, prefix: prefix}
}

var Scopes = (*OAuth).scopes
