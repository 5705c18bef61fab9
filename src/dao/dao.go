package dao

import (
	"gorm.io/gorm"

	"github.com/ProjectsTask/EasySwapListing/src/common/xkv"
)

// Dao 数据访问对象
// 封装了数据库 (GORM) 和 Redis (KvStore) 的操作
// 所有的数据库交互逻辑应在此层实现, 避免在 Service 层直接操作 DB
type Dao struct {
	DB      *gorm.DB   // 关系型数据库连接实例 (MySQL)
	KvStore *xkv.Store // 键值存储实例 (Redis), 未配置时为 nil
}

// New 创建一个新的 Dao 实例
func New(db *gorm.DB, kvStore *xkv.Store) *Dao {
	return &Dao{
		DB:      db,
		KvStore: kvStore,
	}
}
