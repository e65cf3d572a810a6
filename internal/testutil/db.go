// Package testutil 为各层测试提供共享的 SQLite 内存数据库
package testutil

import (
	"sync"
	"testing"

	"picture-wall/pkg/config"
	"picture-wall/pkg/db"

	"gorm.io/gorm"
)

var (
	initOnce sync.Once
	initErr  error
)

// SetupDB 加载测试配置并初始化数据库，每次调用都会清空全部表
func SetupDB(t *testing.T) {
	t.Helper()
	initOnce.Do(func() {
		if initErr = config.InitTest(); initErr != nil {
			return
		}
		initErr = db.InitDB(config.GlobalConfig.Database)
	})
	if initErr != nil {
		t.Fatalf("Failed to initialize test database: %v", initErr)
	}

	session := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range db.Models() {
		if err := session.Delete(m).Error; err != nil {
			t.Fatalf("Failed to clean table for %T: %v", m, err)
		}
	}
}
