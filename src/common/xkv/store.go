package xkv

import (
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Redis 单个 redis 节点配置
type Redis struct {
	Host string `toml:"host" mapstructure:"host" json:"host"` // 主机地址 host:port
	Type string `toml:"type" mapstructure:"type" json:"type"` // node / cluster
	Pass string `toml:"pass" mapstructure:"pass" json:"-"` // 密码
}

// Store 对 go-zero kv.Store 的一层封装
type Store struct {
	kv.Store
}

// NewStore 根据 redis 节点列表创建 Store
func NewStore(nodes []*Redis) *Store {
	var kvConf kv.KvConf
	for _, con := range nodes {
		kvConf = append(kvConf, cache.NodeConf{
			RedisConf: redis.RedisConf{
				Host: con.Host,
				Type: con.Type,
				Pass: con.Pass,
			},
			Weight: 1,
		})
	}

	return &Store{Store: kv.NewStore(kvConf)}
}
