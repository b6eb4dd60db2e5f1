package receiving

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/wareline/warehouse-receiving/internal/receiving/domain"
	"github.com/wareline/warehouse-receiving/internal/receiving/repository"
	"github.com/wareline/warehouse-receiving/internal/receiving/usecase/command"
	"github.com/wareline/warehouse-receiving/kafka"
)

// ProvideUnitOfWork provides the transactional unit of work
func ProvideUnitOfWork(db *gorm.DB, redisClient *redis.Client) domain.UnitOfWork {
	return repository.NewGormUnitOfWorkWithCache(db, redisClient)
}

// ProvideStore provides the non-transactional store for queries
func ProvideStore(db *gorm.DB, redisClient *redis.Client) domain.Store {
	return repository.NewStoreWithCache(db, redisClient)
}

// ProvideAuditPublisher provides the audit sink. The publisher is nil-safe,
// so a deployment without brokers still satisfies the interface.
func ProvideAuditPublisher(publisher *kafka.Publisher) command.AuditPublisher {
	return publisher
}

// Wire sets
var StoreSet = wire.NewSet(
	ProvideUnitOfWork,
	ProvideStore,
	ProvideAuditPublisher,
)
