// Package config handles configuration loading for hiring-router.
//
// # Overview
//
// Configuration comes from an optional YAML file followed by environment
// overrides. Every setting has a default, so the service starts with no
// file and no environment at all.
//
// # Configuration File
//
// The path is read from HIRING_ROUTER_CONFIG, falling back to
// ./hiring-router.yaml. A missing file is not an error; an unreadable or
// unparsable one is.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	logging:
//	  webhook_secret: "${LOG_WEBHOOK_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	environment: development
//	server:
//	  bind: "0.0.0.0"
//	  port: 8080
//	logging:
//	  level: INFO
//	  dir: ./hiring_logs
//	  retention: 14
//	  console_format: text   # or json
//	  webhook_url: ""
//	  webhook_secret: ""
//	  client_id: ""
//	router:
//	  privacy_mode: private  # or raw
//	  identity_fields: [user_id]
//	workflows:
//	  n8n_webhook_url: ""
//	integrations:
//	  hh_api_key: ""
//	research:
//	  records_path: ./records.json
//
// # Environment Overrides
//
// Applied after the file: ENVIRONMENT, LOG_LEVEL, LOG_DIR, LOG_WEBHOOK_URL,
// LOG_CLIENT_ID, LOG_WEBHOOK_SECRET, CONSOLE_LOG_FORMAT, N8N_WEBHOOK_URL,
// HH_API_KEY, PORT, BIND, ROUTER_PRIVACY_MODE and DEEP_RESEARCH_RECORDS_PATH.
// A PORT that is not an integer fails the load.
//
// # Validation
//
// Load validates the merged configuration (port range, privacy mode,
// console format), then resolves the log directory to an absolute path
// and creates it. An unknown log level is treated as INFO.
package config
