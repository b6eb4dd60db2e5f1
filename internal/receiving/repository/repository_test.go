package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	whrepo "github.com/wareline/warehouse-receiving/internal/warehouse/repository"
)

func TestStoreServesTracedRepositories(t *testing.T) {
	store := NewStore(&gorm.DB{})

	assert.IsType(t, &GormSessionRepositoryWithTracing{}, store.Sessions())
	assert.IsType(t, &GormItemRepositoryWithTracing{}, store.Items())
	assert.IsType(t, &whrepo.GormLocationRepositoryWithTracing{}, store.Locations())
	assert.IsType(t, &whrepo.GormSubdivisionRepositoryWithTracing{}, store.Subdivisions())
}
