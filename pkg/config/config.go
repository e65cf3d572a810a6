package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	OTP      OTPConfig      `mapstructure:"otp"`
	Mail     MailConfig     `mapstructure:"mail"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Sharing  SharingConfig  `mapstructure:"sharing"`
	Plans    PlansConfig    `mapstructure:"plans"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// development 模式下 500 错误会返回具体信息
	Mode        string `mapstructure:"mode"`
	Environment string `mapstructure:"environment"`
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Mode == "development"
}

type DatabaseConfig struct {
	// mysql 或 sqlite
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level          string `mapstructure:"level"`
	ProductionMode bool   `mapstructure:"production_mode"`
}

type OTPConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type MailConfig struct {
	// smtp, resend 或 log
	Provider     string `mapstructure:"provider"`
	From         string `mapstructure:"from"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPass     string `mapstructure:"smtp_pass"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
}

type UploadConfig struct {
	// local 或 s3
	Backend   string   `mapstructure:"backend"`
	Dir       string   `mapstructure:"dir"`
	PublicURL string   `mapstructure:"public_url"`
	MaxSize   int64    `mapstructure:"max_size"`
	S3        S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

type SharingConfig struct {
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	EnforceTokenExpiry bool          `mapstructure:"enforce_token_expiry"`
	// 失效超过该时长的分享记录会被清理
	CleanupAfter time.Duration `mapstructure:"cleanup_after"`
}

type PlansConfig struct {
	DefaultPlan string        `mapstructure:"default_plan"`
	CacheSize   int           `mapstructure:"cache_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

var GlobalConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "production")
	v.SetDefault("server.environment", "production")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("jwt.expiration", 7*24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.production_mode", true)
	v.SetDefault("otp.ttl", time.Minute)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.public_url", "/uploads")
	v.SetDefault("upload.max_size", 30*1024*1024)
	v.SetDefault("sharing.token_ttl", 7*24*time.Hour)
	v.SetDefault("sharing.enforce_token_expiry", false)
	v.SetDefault("sharing.cleanup_after", 30*24*time.Hour)
	v.SetDefault("plans.default_plan", "free")
	v.SetDefault("plans.cache_size", 64)
	v.SetDefault("plans.cache_ttl", 5*time.Minute)
}

func load(name string) error {
	// 获取项目根目录
	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(filepath.Dir(filepath.Dir(b)))

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")
	v.AddConfigPath(filepath.Join(basepath, "config"))

	// 环境变量覆盖，例如 PICWALL_JWT_SECRET
	v.SetEnvPrefix("PICWALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	GlobalConfig = cfg
	return nil
}

func Init() error {
	return load("config")
}

// 测试用的配置文件
func InitTest() error {
	return load("config.test")
}
