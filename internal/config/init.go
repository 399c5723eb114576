package config

import (
	"os"

	derrors "multazim/internal/errors"
)

const starterConfig = `# Multazim bot configuration.
# Values of the form ${VAR} are expanded from the environment; a .env file
# next to the binary is loaded automatically.

bot:
  token: ${MULTAZIM_BOT_TOKEN}
  poll_timeout_seconds: 30

storage:
  backend: file # file | sqlite
  data_dir: ./data
  # sqlite_path: ./data/multazim.db

# IANA timezone for deriving calendar-day keys. Empty = process-local.
timezone: Africa/Cairo

http:
  enabled: true
  addr: ":8090"

backup:
  enabled: true
  interval: 24h
  dir: ./data/backups
  keep: 14

logging:
  level: info
  format: text

# texts:
#   welcome: "..."
#   already_done: "..."
#   celebrations:
#     quran_portion: "..."
`

// Init writes a commented starter configuration file.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return derrors.ValidationFailed("config", "file already exists (use --force to overwrite)").
				WithContext("path", path)
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}
