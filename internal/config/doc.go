// Package config handles configuration loading and merging for resusage.
//
// # Configuration Precedence
//
// Configuration values are resolved in the following order (highest to lowest priority):
//
//  1. CLI flags (--output, --format, --theme, --qualify, --strict, --log-level, ...)
//  2. Environment variables (RESUSAGE_OUTPUT, RESUSAGE_FORMAT, RESUSAGE_STRICT, NO_COLOR, ...)
//  3. YAML config file (.resusage.yaml in the working directory or
//     $XDG_CONFIG_HOME/resusage/.resusage.yaml, or the file named by --config)
//  4. Hardcoded defaults
//
// # Extra keywords
//
// The keywords map registers additional marker keywords next to the built-in
// ones. Each entry maps a keyword name to an UPPER_SNAKE resource kind:
//
//	keywords:
//	  Use S3 Bucket: S3_BUCKET
//	  Run Glue Job: GLUE_JOB
//
// # Environment Variables
//
//   - RESUSAGE_OUTPUT: path of the usage map file
//   - RESUSAGE_FORMAT: auto, terminal, llm, json
//   - RESUSAGE_THEME: default, orca, mono
//   - RESUSAGE_QUALIFY, RESUSAGE_STRICT, RESUSAGE_PASSTHROUGH: "true"/"1" or "false"/"0"
//   - RESUSAGE_LOG_LEVEL: debug, info, warn, error
//   - NO_COLOR: any non-empty value forces the mono theme
package config
