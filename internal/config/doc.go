// Package config loads the tunesphere client configuration.
//
// # Resolution Order
//
// Load builds a Config in layers, later layers winning:
//
//  1. Built-in defaults (see Default)
//  2. The TOML file: the explicit path, else $TUNESPHERE_CONFIG, else
//     ~/.config/tunesphere/config.toml. A missing file is skipped.
//  3. A .env file in the working directory, loaded with godotenv. It never
//     overrides variables already present in the environment.
//  4. TUNESPHERE_* environment variables
//
// Blank values at any layer fall through to the layer below.
//
// # Default Values
//
//   - API base URL: http://localhost:5000/api
//   - Storage: file, at ~/.local/share/tunesphere/store.toml
//   - Redis: 127.0.0.1:6379, db 0
//   - Log file: ~/.local/state/tunesphere/tunesphere.log, level info
//   - Refresh interval: 60s
//
// # TOML Format
//
//	api_url = "http://localhost:5000/api"
//	storage = "file"            # or "redis"
//	storage_path = "~/.local/share/tunesphere/store.toml"
//	redis_addr = "127.0.0.1:6379"
//	redis_password = ""
//	redis_db = 0
//	log_path = "~/.local/state/tunesphere/tunesphere.log"
//	log_level = "info"
//	refresh_seconds = 60
//
// Each key has an environment twin: api_url is TUNESPHERE_API_URL,
// refresh_seconds is TUNESPHERE_REFRESH_SECONDS, and so on.
//
// # Validation
//
// Load fails on unparseable TOML, an unknown storage backend, a non-positive
// refresh interval, a negative Redis database or a non-numeric integer
// variable. The API URL loses trailing slashes; paths are expanded (~) and
// made absolute.
//
// # Writing
//
// Save writes a Config back as TOML with mode 0600, since it may hold the
// Redis password. Encode renders the same document with the password masked
// for display.
package config
