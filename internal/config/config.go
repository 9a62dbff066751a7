package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// WorkflowConfig externalizes every threshold and rate the engine and the
// step resolver depend on. Amounts are whole rupiah.
type WorkflowConfig struct {
	SupervisorAmountThreshold int64 `mapstructure:"supervisor_amount_threshold"`

	MaxRatePercent float64 `mapstructure:"max_rate_percent"`

	Loan       LoanConfig       `mapstructure:"loan"`
	Deposit    DepositConfig    `mapstructure:"deposit"`
	Withdrawal WithdrawalConfig `mapstructure:"withdrawal"`
}

// LoanConfig bounds and prices loan applications.
type LoanConfig struct {
	MinAmount              int64   `mapstructure:"min_amount"`
	MaxAmount              int64   `mapstructure:"max_amount"`
	MinTenorMonths         int     `mapstructure:"min_tenor_months"`
	MaxTenorMonths         int     `mapstructure:"max_tenor_months"`
	CashAnnualRatePercent  float64 `mapstructure:"cash_annual_rate_percent"`
	GoodsAnnualRatePercent float64 `mapstructure:"goods_annual_rate_percent"`
	ShopMarginRatePercent  float64 `mapstructure:"shop_margin_rate_percent"`
}

// DepositConfig bounds and prices deposit applications.
type DepositConfig struct {
	MinAmount         int64   `mapstructure:"min_amount"`
	MinTenorMonths    int     `mapstructure:"min_tenor_months"`
	MaxTenorMonths    int     `mapstructure:"max_tenor_months"`
	AnnualRatePercent float64 `mapstructure:"annual_rate_percent"`
}

// WithdrawalConfig bounds and prices withdrawal applications.
type WithdrawalConfig struct {
	MinAmount          int64   `mapstructure:"min_amount"`
	PenaltyRatePercent float64 `mapstructure:"penalty_rate_percent"`
}

// Load loads configuration from file and environment variables. A .env
// file next to the binary is loaded first so local overrides work without
// exporting anything.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/koperasi.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Hour)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "console")

	viper.SetDefault("workflow.supervisor_amount_threshold", 50_000_000)
	viper.SetDefault("workflow.max_rate_percent", 60.0)

	viper.SetDefault("workflow.loan.min_amount", 500_000)
	viper.SetDefault("workflow.loan.max_amount", 200_000_000)
	viper.SetDefault("workflow.loan.min_tenor_months", 3)
	viper.SetDefault("workflow.loan.max_tenor_months", 60)
	viper.SetDefault("workflow.loan.cash_annual_rate_percent", 12.0)
	viper.SetDefault("workflow.loan.goods_annual_rate_percent", 10.0)
	viper.SetDefault("workflow.loan.shop_margin_rate_percent", 5.0)

	viper.SetDefault("workflow.deposit.min_amount", 100_000)
	viper.SetDefault("workflow.deposit.min_tenor_months", 1)
	viper.SetDefault("workflow.deposit.max_tenor_months", 36)
	viper.SetDefault("workflow.deposit.annual_rate_percent", 6.0)

	viper.SetDefault("workflow.withdrawal.min_amount", 50_000)
	viper.SetDefault("workflow.withdrawal.penalty_rate_percent", 5.0)
}

// Validate checks the configuration for contradictions before anything
// starts.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	w := c.Workflow
	if w.SupervisorAmountThreshold <= 0 {
		return fmt.Errorf("supervisor amount threshold must be positive")
	}
	if w.MaxRatePercent <= 0 {
		return fmt.Errorf("max rate percent must be positive")
	}
	if w.Loan.MinAmount <= 0 || w.Loan.MaxAmount < w.Loan.MinAmount {
		return fmt.Errorf("loan amount bounds are inconsistent")
	}
	if w.Loan.MinTenorMonths <= 0 || w.Loan.MaxTenorMonths < w.Loan.MinTenorMonths {
		return fmt.Errorf("loan tenor bounds are inconsistent")
	}
	if w.Deposit.MinTenorMonths <= 0 || w.Deposit.MaxTenorMonths < w.Deposit.MinTenorMonths {
		return fmt.Errorf("deposit tenor bounds are inconsistent")
	}
	for name, rate := range map[string]float64{
		"loan cash rate":          w.Loan.CashAnnualRatePercent,
		"loan goods rate":         w.Loan.GoodsAnnualRatePercent,
		"shop margin rate":        w.Loan.ShopMarginRatePercent,
		"deposit rate":            w.Deposit.AnnualRatePercent,
		"withdrawal penalty rate": w.Withdrawal.PenaltyRatePercent,
	} {
		if rate < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	return nil
}
