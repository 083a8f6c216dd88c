package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB membuka koneksi database dari environment. Default MySQL;
// set DB_DRIVER=sqlite untuk development lokal tanpa server database.
func InitDB() (*gorm.DB, error) {
	driver := os.Getenv("DB_DRIVER")
	if driver == "sqlite" {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "kopiaku.db"
		}
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "3306")
	user := getEnv("DB_USER", "root")
	pass := os.Getenv("DB_PASSWORD")
	name := getEnv("DB_NAME", "kopiaku")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, name)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
