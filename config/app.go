package config

type App struct {
	Port        string `env:"APP_PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Env         string `env:"APP_ENV" default:"dev"`

	// BaseURL is prepended to activation links sent by email and echoed
	// back in the register response.
	BaseURL      string `env:"BASE_URL" default:"http://localhost:8080"`
	PlatformName string `env:"PLATFORM_NAME" default:"Library Management System"`

	// Mail sender. When SMTPHost is empty activation mails are only logged.
	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort string `env:"SMTP_PORT" default:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM"`
}
