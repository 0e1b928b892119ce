package database

import (
	"fmt"
	"time"

	"mealtracker-go-worker/models"
	"mealtracker-go-worker/structs"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// Handle 是唯一的資料庫連線持有者，由 main 建立後注入各個 consumer，
// 不透過全域變數取用
type Handle struct {
	DB *gorm.DB
}

func Open(config *structs.EnviromentModel) (*Handle, error) {
	var db *gorm.DB
	var err error

	switch config.Database.Client {
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@(%s:%s)/%s?%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Db,
			config.Database.Params,
		)
		db, err = gorm.Open("mysql", dsn)
	default:
		// 預設使用本機檔案型的 sqlite，_foreign_keys 讓每條連線都開啟外鍵檢查
		db, err = gorm.Open("sqlite3", config.Database.Db+"?_foreign_keys=on")
	}
	if err != nil {
		return nil, err
	}

	// 連線池設定
	if config.Database.MaxIdle > 0 {
		db.DB().SetMaxIdleConns(int(config.Database.MaxIdle))
	}
	if config.Database.MaxOpenConn > 0 {
		db.DB().SetMaxOpenConns(int(config.Database.MaxOpenConn))
	}
	if config.Database.MaxLifeTime != "" {
		if lifeTime, parseErr := time.ParseDuration(config.Database.MaxLifeTime); parseErr == nil {
			db.DB().SetConnMaxLifetime(lifeTime)
		}
	}
	db.LogMode(config.Database.LogEnable == 1)

	return &Handle{DB: db}, nil
}

// OpenForTest 直接用 sqlite 路徑開啟，測試用
func OpenForTest(path string) (*Handle, error) {
	db, err := gorm.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.DB().SetMaxOpenConns(1)
	return &Handle{DB: db}, nil
}

func (h *Handle) Migrate() error {
	if err := h.DB.AutoMigrate(&models.Meal{}, &models.TrackedMeal{}, &models.ActivityLog{}).Error; err != nil {
		return err
	}
	// mysql 靠外鍵約束做 cascade；sqlite 的 AddForeignKey 不支援，
	// 由 PRAGMA 加上 repository 的交易內刪除補齊
	h.DB.Model(&models.TrackedMeal{}).AddForeignKey("meal_id", "meals(id)", "CASCADE", "CASCADE")
	return nil
}

func (h *Handle) Close() error {
	return h.DB.Close()
}

func (h *Handle) Ping() error {
	return h.DB.DB().Ping()
}
