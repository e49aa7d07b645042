// Package config loads platform settings and resolves credentials.
//
// It supports:
//   - Settings loaded from TRADEOPS_* environment variables with strict
//     parsing and applied defaults (see Load)
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable credential providers (see Provider + Registry)
//   - Resolving credential references in configuration values (see Resolver)
//
// Credential references use the prefix "secretref:":
//   - Full value:  secretref:env:OKX_API_SECRET
//   - Inline use:  Bearer secretref:env:TELEGRAM_BOT_TOKEN
package config
