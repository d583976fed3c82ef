package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetActorRepository returns the actor repository instance
func (f *Factory) GetActorRepository() ActorRepository {
	return f.GetRepositories().Actor
}

// GetJournalRepository returns the journal repository instance
func (f *Factory) GetJournalRepository() JournalRepository {
	return f.GetRepositories().Journal
}

// GetCounterRepository returns the counter repository instance
func (f *Factory) GetCounterRepository() CounterRepository {
	return f.GetRepositories().Counter
}

// GetAchievementRepository returns the achievement repository instance
func (f *Factory) GetAchievementRepository() AchievementRepository {
	return f.GetRepositories().Achievement
}

// GetSettingRepository returns the setting repository instance
func (f *Factory) GetSettingRepository() SettingRepository {
	return f.GetRepositories().Setting
}

var (
	globalFactory   *Factory
	globalFactoryMu sync.Mutex
)

// InitGlobalFactory wires the process-wide factory at startup
func InitGlobalFactory(db *gorm.DB) *Factory {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	globalFactory = NewFactory(db)
	return globalFactory
}

// GetGlobalFactory returns the process-wide factory
func GetGlobalFactory() *Factory {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	return globalFactory
}
