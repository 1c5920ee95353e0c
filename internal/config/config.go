package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SMTPProfile — транспортный профиль, выбираемый по домену отправителя.
type SMTPProfile struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	UseTLS bool   `yaml:"use_tls"`
}

type MailConfig struct {
	// Ящик процесса по умолчанию: используется, когда у проекта нет
	// своих SMTP-учёток.
	DefaultSender string `yaml:"default_sender"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	// Профили по домену отправителя, ключ "default" обязателен.
	Profiles map[string]SMTPProfile `yaml:"profiles"`
}

type AdminConfig struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
		// Переопределение внешнего адреса для ссылок в письмах.
		// Пусто — берём Host входящего запроса.
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		// Секрет bearer-токенов (login/admin-login).
		JWTSecret string `yaml:"jwt_secret"`
		// Секрет подписи верификационных токенов.
		TokenSecret string `yaml:"token_secret"`
		// Срок жизни bearer-токена в минутах, по умолчанию 60.
		BearerTTLMinutes int `yaml:"bearer_ttl_minutes"`
	} `yaml:"auth"`
	Admin AdminConfig `yaml:"admin"`
	Mail  MailConfig  `yaml:"mail"`
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	// секреты можно держать вне файла
	overrideFromEnv(&cfg.Database.DSN, "DATABASE_URL")
	overrideFromEnv(&cfg.Auth.JWTSecret, "JWT_SECRET_KEY")
	overrideFromEnv(&cfg.Auth.TokenSecret, "SECRET_KEY")
	overrideFromEnv(&cfg.Admin.Email, "ADMIN_EMAIL")
	overrideFromEnv(&cfg.Admin.PasswordHash, "ADMIN_PASSWORD_HASH")
	overrideFromEnv(&cfg.Mail.Username, "MAIL_USERNAME")
	overrideFromEnv(&cfg.Mail.Password, "MAIL_PASSWORD")

	if cfg.Auth.BearerTTLMinutes <= 0 {
		cfg.Auth.BearerTTLMinutes = 60
	}
	if cfg.Mail.Profiles == nil {
		cfg.Mail.Profiles = map[string]SMTPProfile{}
	}
	if _, ok := cfg.Mail.Profiles["gmail.com"]; !ok {
		cfg.Mail.Profiles["gmail.com"] = SMTPProfile{Host: "smtp.gmail.com", Port: 587, UseTLS: true}
	}
	if _, ok := cfg.Mail.Profiles["default"]; !ok {
		cfg.Mail.Profiles["default"] = SMTPProfile{Host: "smtp.zoho.com", Port: 587, UseTLS: true}
	}
	return &cfg
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
