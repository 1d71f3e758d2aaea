package settings

// SettingDefaults holds the default values for settings that may be overridden
// at runtime through the settings table, taking precedence over environment
// variables loaded at startup.
var SettingDefaults = map[string]interface{}{
	"base_currency":              "USD",
	"valuation_timezone":         "America/New_York",
	"history_days_default":       1825.0, // 5 years
	"closed_position_grace_days": 45.0,
	"quote_history_buffer_days":  45.0,
	"min_sync_lookback_days":     5.0,

	"alphavantage_api_key":  "",
	"metalpriceapi_api_key": "",

	"r2_account_id":        "",
	"r2_access_key_id":     "",
	"r2_secret_access_key": "",
	"r2_bucket_name":       "",
	"r2_backup_enabled":    0.0,
	"r2_backup_schedule":   "daily",
}
