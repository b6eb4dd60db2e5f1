//go:build wireinject
// +build wireinject

package receiving

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/delivery/http"
	"github.com/wareline/warehouse-receiving/kafka"
)

// InitializeHTTPHandler initializes the HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, redisClient *redis.Client, publisher *kafka.Publisher) (*http.ReceivingHandler, error) {
	wire.Build(
		StoreSet,
		http.NewReceivingHandler,
	)
	return nil, nil
}
