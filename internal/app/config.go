package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	SourceRemote = "remote"
	SourceNeo4j  = "neo4j"
	SourceStatic = "static"
)

type HTTP struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSecond   int    `yaml:"read_timeout_second"`
	WriteTimeoutSecond  int    `yaml:"write_timeout_second"`
	ShutdownGraceSecond int    `yaml:"shutdown_grace_second"`
}

type Project struct {
	ID string `yaml:"id"`
	// Platform 决定复制修饰键，darwin 为 Meta，其余为 Control。
	Platform string `yaml:"platform"`
}

type Source struct {
	Mode          string `yaml:"mode"`
	BaseURL       string `yaml:"base_url"`
	Token         string `yaml:"token"`
	TokenURL      string `yaml:"token_url"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	AuthHeader    string `yaml:"auth_header"`
	TimeoutSecond int    `yaml:"timeout_second"`
	// SeedFile 为 YAML 快照，neo4j 模式下库存为空时导入，static 模式下作为数据来源。
	SeedFile string `yaml:"seed_file"`
}

type Neo4j struct {
	URI                  string `yaml:"uri"`
	Username             string `yaml:"username"`
	Password             string `yaml:"password"`
	Database             string `yaml:"database"`
	MaxConnectionPool    int    `yaml:"max_connections"`
	ConnectTimeoutSecond int    `yaml:"connect_timeout_second"`
	BatchSize            int    `yaml:"batch_size"`
}

type Poll struct {
	BusyMillis int    `yaml:"busy_ms"`
	IdleMillis int    `yaml:"idle_ms"`
	Mask       string `yaml:"mask"`
}

type Revalidate struct {
	Cron string `yaml:"cron"`
}

type Retry struct {
	Attempts      int `yaml:"attempts"`
	BackoffMillis int `yaml:"backoff_ms"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	HTTP       HTTP       `yaml:"http"`
	Project    Project    `yaml:"project"`
	Source     Source     `yaml:"source"`
	Neo4j      Neo4j      `yaml:"neo4j"`
	Poll       Poll       `yaml:"poll"`
	Revalidate Revalidate `yaml:"revalidate"`
	Retry      Retry      `yaml:"retry"`
	Log        Log        `yaml:"log"`
}

// LoadConfig 从文件加载配置并补齐默认值。
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeoutSecond <= 0 {
		c.HTTP.ReadTimeoutSecond = 15
	}
	if c.HTTP.WriteTimeoutSecond <= 0 {
		c.HTTP.WriteTimeoutSecond = 15
	}
	if c.HTTP.ShutdownGraceSecond <= 0 {
		c.HTTP.ShutdownGraceSecond = 10
	}
	c.Source.Mode = strings.ToLower(strings.TrimSpace(c.Source.Mode))
	if c.Source.Mode == "" {
		c.Source.Mode = SourceStatic
	}
	if c.Source.TimeoutSecond <= 0 {
		c.Source.TimeoutSecond = 10
	}
	if c.Neo4j.BatchSize <= 0 {
		c.Neo4j.BatchSize = 200
	}
	if c.Poll.BusyMillis <= 0 {
		c.Poll.BusyMillis = 2000
	}
	if c.Poll.IdleMillis <= 0 {
		c.Poll.IdleMillis = 5000
	}
	if c.Poll.Mask == "" {
		c.Poll.Mask = "both"
	}
	if c.Revalidate.Cron == "" {
		c.Revalidate.Cron = "@every 1m"
	}
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.BackoffMillis <= 0 {
		c.Retry.BackoffMillis = 500
	}
	return c
}

// Validate 检查必填项。
func (c Config) Validate() error {
	if strings.TrimSpace(c.Project.ID) == "" {
		return fmt.Errorf("project.id 不能为空")
	}
	switch c.Source.Mode {
	case SourceRemote:
		if c.Source.BaseURL == "" {
			return fmt.Errorf("remote 模式需要 source.base_url")
		}
	case SourceNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("neo4j 模式需要 neo4j.uri")
		}
	case SourceStatic:
	default:
		return fmt.Errorf("未知的 source.mode %q", c.Source.Mode)
	}
	switch c.Poll.Mask {
	case "calculating", "saving", "both":
	default:
		return fmt.Errorf("未知的 poll.mask %q", c.Poll.Mask)
	}
	return nil
}

// BusyInterval 有未完成操作时的轮询间隔。
func (p Poll) BusyInterval() time.Duration { return time.Duration(p.BusyMillis) * time.Millisecond }

// IdleInterval 空闲时的轮询间隔。
func (p Poll) IdleInterval() time.Duration { return time.Duration(p.IdleMillis) * time.Millisecond }

// Backoff 首次重试前的等待时间。
func (r Retry) Backoff() time.Duration { return time.Duration(r.BackoffMillis) * time.Millisecond }
