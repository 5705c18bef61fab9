package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/ProjectsTask/EasySwapListing/src/common/gdb"
	"github.com/ProjectsTask/EasySwapListing/src/common/validator"
	"github.com/ProjectsTask/EasySwapListing/src/common/xkv"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace/metadata"
)

const EnvPrefix = "ESL"

// Config 应用全局配置
type Config struct {
	Api         Api             `toml:"api" mapstructure:"api" json:"api"`                            // HTTP 服务配置
	ProjectCfg  ProjectCfg      `toml:"project_cfg" mapstructure:"project_cfg" json:"project_cfg"`    // 项目名称配置
	Log         xzap.LogConf    `toml:"log" mapstructure:"log" json:"log"`                            // 日志配置
	Kv          *KvConf         `toml:"kv" mapstructure:"kv" json:"kv"`                               // KV存储配置 (Redis), 可选
	DB          *gdb.Config     `toml:"db" mapstructure:"db" json:"db"`                               // 数据库配置 (MySQL), 可选
	ChainCfg    ChainCfg        `toml:"chain_cfg" mapstructure:"chain_cfg" json:"chain_cfg"`          // 链信息配置
	Wallet      WalletCfg       `toml:"wallet" mapstructure:"wallet" json:"-"`                        // 钱包配置, 不输出到日志
	ContractCfg ContractCfg     `toml:"contract_cfg" mapstructure:"contract_cfg" json:"contract_cfg"` // 合约地址配置
	Metadata    metadata.Config `toml:"metadata" mapstructure:"metadata" json:"metadata"`             // NFT 元数据读取配置
	Page        PageCfg         `toml:"page" mapstructure:"page" json:"page"`                         // 详情页配置
	Monitor     Monitor         `toml:"monitor" mapstructure:"monitor" json:"monitor"`                // 监控相关配置
}

// Api HTTP 服务配置
type Api struct {
	Port   string `toml:"port" mapstructure:"port" json:"port" validate:"required"` // 监听地址, 如 :9000
	MaxNum int64  `toml:"max_num" mapstructure:"max_num" json:"max_num"`            // 审计记录单次查询上限
}

// ProjectCfg 定义项目配置
type ProjectCfg struct {
	Name string `toml:"name" mapstructure:"name" json:"name" validate:"required"` // 项目名称, 用于 redis key
}

// KvConf 定义 Key-Value 存储配置
type KvConf struct {
	Redis []*xkv.Redis `toml:"redis" mapstructure:"redis" json:"redis"`
}

// Enabled 是否配置了 redis
func (c *KvConf) Enabled() bool {
	return c != nil && len(c.Redis) > 0
}

// ChainCfg 定义链的基本信息
type ChainCfg struct {
	Name      string     `toml:"name" mapstructure:"name" json:"name" validate:"required"` // 链名称 (如: eth, sepolia)
	ID        int64      `toml:"id" mapstructure:"id" json:"id" validate:"required"`       // 市场合约所在链 Chain ID
	Endpoints []Endpoint `toml:"endpoints" mapstructure:"endpoints" json:"endpoints" validate:"required,min=1,dive"`
}

// Endpoint 单条链的 RPC 节点
type Endpoint struct {
	ChainID int64  `toml:"chain_id" mapstructure:"chain_id" json:"chain_id" validate:"required"`
	Url     string `toml:"url" mapstructure:"url" json:"url" validate:"required"`
}

// EndpointMap chain id -> rpc url
func (c ChainCfg) EndpointMap() map[int64]string {
	m := make(map[int64]string, len(c.Endpoints))
	for _, e := range c.Endpoints {
		m[e.ChainID] = e.Url
	}
	return m
}

// WalletCfg 签名钱包配置
type WalletCfg struct {
	PrivateKey string `toml:"private_key" mapstructure:"private_key" json:"-"`  // 签名私钥, 为空时只能浏览
	ChainID    int64  `toml:"chain_id" mapstructure:"chain_id" json:"chain_id"` // 启动时连接的链, 0 表示目标链
}

// ContractCfg 定义相关的合约地址
type ContractCfg struct {
	MarketplaceAddress string `toml:"marketplace_address" mapstructure:"marketplace_address" json:"marketplace_address" validate:"required,address"` // MarketplaceV3 合约地址
	WethAddress        string `toml:"weth_address" mapstructure:"weth_address" json:"weth_address" validate:"omitempty,address"`                  // 报价使用的 WETH 地址
	WaitMined          bool   `toml:"wait_mined" mapstructure:"wait_mined" json:"wait_mined"`                                                    // 是否等待交易上链
}

// PageCfg 详情页配置
type PageCfg struct {
	FetchTimeoutSec int  `toml:"fetch_timeout_sec" mapstructure:"fetch_timeout_sec" json:"fetch_timeout_sec"` // 挂单查询超时
	RenderWaitMs    int  `toml:"render_wait_ms" mapstructure:"render_wait_ms" json:"render_wait_ms"`          // 页面渲染前等待查询结果的时间
	SessionTTLMin   int  `toml:"session_ttl_min" mapstructure:"session_ttl_min" json:"session_ttl_min"`       // 页面会话保留时间
	ListingCacheSec int  `toml:"listing_cache_sec" mapstructure:"listing_cache_sec" json:"listing_cache_sec"` // 挂单本地缓存时间, 0 表示不缓存
	SubmitGuardSec  int  `toml:"submit_guard_sec" mapstructure:"submit_guard_sec" json:"submit_guard_sec"`    // 提交锁过期时间
	AutoMigrate     bool `toml:"auto_migrate" mapstructure:"auto_migrate" json:"auto_migrate"`                // 启动时创建审计表
}

func (c PageCfg) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

func (c PageCfg) RenderWait() time.Duration {
	return time.Duration(c.RenderWaitMs) * time.Millisecond
}

func (c PageCfg) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func (c PageCfg) ListingCacheTTL() time.Duration {
	return time.Duration(c.ListingCacheSec) * time.Second
}

// Monitor 定义监控配置
type Monitor struct {
	PprofEnable bool  `toml:"pprof_enable" mapstructure:"pprof_enable" json:"pprof_enable"` // 是否开启 Pprof
	PprofPort   int64 `toml:"pprof_port" mapstructure:"pprof_port" json:"pprof_port"`       // Pprof 监听端口
}

// SetDefaults 设置可省略配置项的默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.port", ":9000")
	v.SetDefault("api.max_num", 100)
	v.SetDefault("wallet.private_key", "")
	v.SetDefault("log.service_name", "easyswap-listing")
	v.SetDefault("log.mode", xzap.ModeConsole)
	v.SetDefault("log.level", "info")
	v.SetDefault("metadata.ipfs_gateway", "https://ipfs.io/ipfs/")
	v.SetDefault("metadata.timeout_sec", 10)
	v.SetDefault("metadata.retries", 2)
	v.SetDefault("page.fetch_timeout_sec", 30)
	v.SetDefault("page.render_wait_ms", 1500)
	v.SetDefault("page.session_ttl_min", 30)
	v.SetDefault("page.listing_cache_sec", 10)
	v.SetDefault("page.submit_guard_sec", 120)
}

// BindEnv 环境变量覆盖, 如 ESL_WALLET_PRIVATE_KEY
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// UnmarshalConfig 加载并解析指定路径的配置文件
func UnmarshalConfig(configFilePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFilePath)
	v.SetConfigType("toml")
	SetDefaults(v)
	BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed on read config")
	}

	return Unmarshal(v)
}

// UnmarshalCmdConfig 解析 cobra 已经设置好路径的全局 viper 配置
func UnmarshalCmdConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "failed on read config")
	}

	return Unmarshal(viper.GetViper())
}

// Unmarshal 解析并校验配置
func Unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed on unmarshal config")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate 校验必填项与链配置的一致性
func (c *Config) Validate() error {
	if err := validator.Verify(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	if _, ok := c.ChainCfg.EndpointMap()[c.ChainCfg.ID]; !ok {
		return errors.Errorf("invalid config: no endpoint for chain %d", c.ChainCfg.ID)
	}
	if c.Wallet.ChainID != 0 {
		if _, ok := c.ChainCfg.EndpointMap()[c.Wallet.ChainID]; !ok {
			return errors.Errorf("invalid config: no endpoint for wallet chain %d", c.Wallet.ChainID)
		}
	}

	return nil
}
