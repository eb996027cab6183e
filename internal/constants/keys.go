package constants

const (
	// Context Keys
	ContextKeyIsLoggedIn = "IsLoggedIn"
	ContextKeySettings   = "settings"
	ContextKeyEditor     = "editor"

	// Session Keys
	SessionKeyAuthenticated = "authenticated"
	SessionKeyEditorID      = "editor_id"
	SessionKeySuccessFlash  = "success"

	// Setting Keys
	SettingPassword             = "password"
	SettingSiteName             = "site_name"
	SettingSiteDescription      = "site_description"
	SettingGithubRepo           = "github_repo"
	SettingGithubBranch         = "github_branch"
	SettingGithubToken          = "github_token"
	SettingGithubBackupCron     = "github_backup_cron"
	SettingGithubLastBackupHash = "github_last_backup_hash"
	SettingWebdavURL            = "webdav_url"
	SettingWebdavUser           = "webdav_user"
	SettingWebdavPassword       = "webdav_password"
	SettingWebdavBackupCron     = "webdav_backup_cron"
	SettingWebdavLastBackupHash = "webdav_last_backup_hash"

	// Editor used for writes made through the bearer-token API.
	APIEditor = "api"
)

// SecretSettings are only overwritten when a non-empty value is submitted.
var SecretSettings = map[string]bool{
	SettingPassword:       true,
	SettingGithubToken:    true,
	SettingWebdavPassword: true,
}
