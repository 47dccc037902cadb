package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Public base URL of this server, e.g. https://voice.yourcafe.com.
	// The telephony provider fetches TwiML and synthesized audio from here.
	PublicHost string `mapstructure:"PUBLIC_HOST"`

	// Café profile spoken to callers.
	CafeName    string `mapstructure:"CAFE_NAME"`
	CafeHours   string `mapstructure:"CAFE_HOURS"`
	CafeAddress string `mapstructure:"CAFE_ADDRESS"`
	WifiInfo    string `mapstructure:"WIFI_INFO"`
	MenuLink    string `mapstructure:"MENU_LINK"`

	// StaffNumber is the human transfer line. Empty means escalation is
	// unavailable and callers hear an apology instead.
	StaffNumber string `mapstructure:"STAFF_NUMBER"`

	// MaxMisunderstandings is the number of consecutive failed turns
	// tolerated before a call is forwarded to staff.
	MaxMisunderstandings int `mapstructure:"MAX_MISUNDERSTANDINGS"`

	// VoiceMode selects how /voice answers: "webhook" (gather-based turns)
	// or "realtime" (media stream session).
	VoiceMode string `mapstructure:"VOICE_MODE"`

	// Twilio call control.
	TwilioAccountSID string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioCallerID   string `mapstructure:"TWILIO_CALLER_ID"`

	// Secret used to sign continuation state tokens between webhook turns.
	StateSecret string `mapstructure:"STATE_SECRET"`

	// Google Cloud (STT/TTS) and Gemini.
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`

	// Firebase (staff push notifications).
	FirebaseServiceAccountFile string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_FILE"`
	StaffDeviceToken           string `mapstructure:"STAFF_DEVICE_TOKEN"`

	// Cloudinary (optional host for synthesized reply audio). When unset,
	// replies are served from this server's /audio route instead.
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// Storage.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	AudioDir    string `mapstructure:"AUDIO_DIR"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReminderDB int    `mapstructure:"REDIS_REMINDER_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CAFE_NAME", "Your Café")
	viper.SetDefault("CAFE_HOURS", "Mon–Sun, 8 AM to 9 PM")
	viper.SetDefault("CAFE_ADDRESS", "123, Main Street, Your City")
	viper.SetDefault("WIFI_INFO", "Network: YOUR_CAFE_WIFI, Password: latte123")
	viper.SetDefault("MENU_LINK", "https://example.com/menu")
	viper.SetDefault("MAX_MISUNDERSTANDINGS", 2)
	viper.SetDefault("VOICE_MODE", "webhook")
	viper.SetDefault("STATE_SECRET", "cafedesk-dev-secret")
	viper.SetDefault("AUDIO_DIR", "static")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REMINDER_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
