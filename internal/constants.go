package internal

const (
	COOKIE_SESSION_NAME    = "foodshare_session"
	COOKIE_REDIRECT_NAME   = "foodshare_redirect"
	COOKIE_LOGGED_OUT_NAME = "just_logged_out"
	SCHEMA_NAME            = "foodshare"
	DONATIONS_PER_PAGE     = 5
	FOOD_ITEMS_PER_PAGE    = 10
	RECENT_DONATIONS_LIMIT = 5
	DASHBOARD_TREND_MONTHS = 6
	PHOTO_KEY_PREFIX       = "food_items"
)
