package config

import "time"

// LocalConfigFile is looked up in the working directory before the user
// config directory.
const LocalConfigFile = "chatbot.toml"

func DefaultConfig() *Config {
	return &Config{
		Provider:       "openai",
		Model:          "",
		Temperature:    0.1,
		SystemMessage:  "system_message.txt",
		Scratchpad:     "scratchpad.md",
		RenderMarkdown: false,
		WrapWidth:      120,
		Retry: RetryConfig{
			MaxAttempts: 7,
			BaseDelay:   5 * time.Second,
		},
		Memory: MemoryConfig{
			MaxTokens:   7500,
			MaxMessages: 20,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
	}
}

func GenerateConfigTemplate() string {
	return `# Chatbot Configuration
# Location: ./chatbot.toml or ~/.config/chatbot/config.toml
# This file uses TOML format: https://toml.io

# Backend: openai, openrouter, anthropic, ollama
# ("gorilla" / "compatible" are OpenAI-compatible endpoints, set base_url)
provider = "openai"

# Model name and sampling temperature (--model / --temperature override these).
# An empty model uses the provider default.
model = "gpt-4"
temperature = 0.1

# API endpoint override (optional)
# base_url = "http://localhost:8000/v1"

# File holding the API key (default: key_<provider>.txt, key_claude.txt for anthropic)
# key_file = "key_openai.txt"

# System message template; <<CODE>> is replaced with the scratchpad contents
system_message = "system_message.txt"
scratchpad = "scratchpad.md"

# Directory for request/response artifacts (default: log/<provider>)
# log_dir = "log/openai"

# Render replies as terminal markdown instead of plain wrapped text
render_markdown = false
wrap_width = 120

[retry]
# Attempts per exchange before giving up
max_attempts = 7
# First backoff delay, doubled after every transient failure
base_delay = "5s"

[memory]
# Token-metered backends evict the oldest turn when usage exceeds max_tokens
max_tokens = 7500
# Other backends evict when the history holds more than max_messages turns
max_messages = 20

[logging]
level = "info"
# console or json
encoding = "console"
# file = "chatbot.log"
`
}
