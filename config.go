package cartsync

// SyncConfig is the engine configuration, decoded from the environment with
// envdecode. Paths point at the three persisted structures; all of them are
// externally editable JSON.
type SyncConfig struct {
	ListName          string  `env:"CARTSYNC_LIST_NAME,default=Groceries"`
	ProductsPath      string  `env:"CARTSYNC_PRODUCTS_PATH,default=data/products.json"`
	SubstitutionsPath string  `env:"CARTSYNC_SUBSTITUTIONS_PATH,default=data/substitutions.json"`
	UnavailablePath   string  `env:"CARTSYNC_UNAVAILABLE_PATH,default=data/unavailable.json"`
	AuditThreshold    float64 `env:"CARTSYNC_AUDIT_THRESHOLD,default=1.0"`
	MaxAddAttempts    int     `env:"CARTSYNC_MAX_ADD_ATTEMPTS,default=2"`
	SlackWebhookURL   string  `env:"CARTSYNC_SLACK_WEBHOOK_URL,default="`
	SlackChannel      string  `env:"CARTSYNC_SLACK_CHANNEL,default=#groceries"`
}

// S3Config selects the S3 state backend when Bucket is set; otherwise the
// file backend is used.
type S3Config struct {
	Bucket           string `env:"CARTSYNC_S3_BUCKET,default="`
	ProductsKey      string `env:"CARTSYNC_S3_PRODUCTS_KEY,default=state/products.json"`
	SubstitutionsKey string `env:"CARTSYNC_S3_SUBSTITUTIONS_KEY,default=state/substitutions.json"`
	UnavailableKey   string `env:"CARTSYNC_S3_UNAVAILABLE_KEY,default=state/unavailable.json"`
}

// HyveeConfig configures the browser cart driver.
type HyveeConfig struct {
	Email          string `env:"HYVEE_EMAIL,default="`
	Password       string `env:"HYVEE_PASSWORD,default="`
	BrowserBin     string `env:"HYVEE_BROWSER_BIN,default="`
	Headless       bool   `env:"HYVEE_HEADLESS,default=false"`
	NavTimeoutSecs int    `env:"HYVEE_NAV_TIMEOUT_SECONDS,default=30"`
}

// TasksConfig configures the Google Tasks client. The access token is
// provisioned out of band; this engine never runs an interactive OAuth flow.
type TasksConfig struct {
	AccessToken  string `env:"GTASKS_ACCESS_TOKEN,default="`
	BaseEndpoint string `env:"GTASKS_BASE_ENDPOINT,default=https://tasks.googleapis.com"`
}
