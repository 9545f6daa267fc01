package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName   string
	Port      string
	Env       string
	Debug     bool
	PublicURL string
	MediaDir  string
	MediaUrl  string

	FunctionsURL  string
	FunctionsKey  string
	RemoteTimeout time.Duration

	CheckoutSkipPreferences bool
	CheckoutTTL             time.Duration
	SessionTTL              time.Duration
	ChatReplyDelay          time.Duration

	ElasticsearchHost  string
	ElasticsearchIndex string

	LogLevel    string
	LogEncoding string
}

var v = newViper()

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetDefault("APP_NAME", "Cafe Storefront")
	vp.SetDefault("APP_ENV", "production")
	vp.SetDefault("PORT", "8080")
	vp.SetDefault("PUBLIC_URL", "http://localhost:8080")
	vp.SetDefault("MEDIA_DIR", "media")
	vp.SetDefault("MEDIA_URL", "/media/")
	vp.SetDefault("DB_DRIVER", "mysql")
	vp.SetDefault("SQLITE_PATH", "cafe.db")
	vp.SetDefault("MYSQL_PORT", "3306")
	vp.SetDefault("REDIS_DB", 0)
	vp.SetDefault("REMOTE_TIMEOUT", "20s")
	vp.SetDefault("CHECKOUT_TTL", "30m")
	vp.SetDefault("SESSION_TTL", "168h")
	vp.SetDefault("CHAT_REPLY_DELAY", "0s")
	vp.SetDefault("ELASTICSEARCH_INDEX", "cafe_products")
	vp.SetDefault("AUTH_TYPE", "basic")
	vp.SetDefault("LOG_LEVEL", "info")
	vp.SetDefault("LOG_ENCODING", "json")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	return vp
}

// LoadAppConfig initializes the global AppConfig variable. CONFIG_FILE, when
// set, names a YAML file merged under the environment.
func LoadAppConfig() *Config {
	once.Do(func() {
		if file := v.GetString("CONFIG_FILE"); file != "" {
			v.SetConfigFile(file)
			_ = v.ReadInConfig()
		}
		AppConfig = buildConfig(v)
	})
	return AppConfig
}

func buildConfig(vp *viper.Viper) *Config {
	return &Config{
		AppName:                 vp.GetString("APP_NAME"),
		Port:                    vp.GetString("PORT"),
		Env:                     vp.GetString("APP_ENV"),
		Debug:                   vp.GetBool("DEBUG"),
		PublicURL:               strings.TrimRight(vp.GetString("PUBLIC_URL"), "/"),
		MediaDir:                vp.GetString("MEDIA_DIR"),
		MediaUrl:                vp.GetString("MEDIA_URL"),
		FunctionsURL:            strings.TrimRight(vp.GetString("FUNCTIONS_URL"), "/"),
		FunctionsKey:            vp.GetString("FUNCTIONS_KEY"),
		RemoteTimeout:           vp.GetDuration("REMOTE_TIMEOUT"),
		CheckoutSkipPreferences: vp.GetBool("CHECKOUT_SKIP_PREFERENCES"),
		CheckoutTTL:             vp.GetDuration("CHECKOUT_TTL"),
		SessionTTL:              vp.GetDuration("SESSION_TTL"),
		ChatReplyDelay:          vp.GetDuration("CHAT_REPLY_DELAY"),
		ElasticsearchHost:       vp.GetString("ELASTICSEARCH_HOST"),
		ElasticsearchIndex:      vp.GetString("ELASTICSEARCH_INDEX"),
		LogLevel:                vp.GetString("LOG_LEVEL"),
		LogEncoding:             vp.GetString("LOG_ENCODING"),
	}
}

// GetEnv returns the configured value for key, or def when unset.
func GetEnv(key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}
