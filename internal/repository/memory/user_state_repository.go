package memory

import (
	"temple-sessions-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// UserStateRepository holds the per-user bookkeeping records (pinned and
// completed sessions) in memory. Records never expire on their own; pinned
// entries carry their own expiry and are pruned by the pin service.
type UserStateRepository struct {
	cache *cache.Cache
}

func NewUserStateRepository() *UserStateRepository {
	c := cache.New(cache.NoExpiration, cache.NoExpiration)
	return &UserStateRepository{
		cache: c,
	}
}

// Get returns the state for a user, or an empty record if none exists yet.
func (r *UserStateRepository) Get(userId string) *entity.UserState {
	if x, found := r.cache.Get(userId); found {
		return x.(*entity.UserState)
	}
	return &entity.UserState{}
}

func (r *UserStateRepository) Save(userId string, state *entity.UserState) {
	r.cache.Set(userId, state, cache.NoExpiration)
}

// Delete clears one user's record only.
func (r *UserStateRepository) Delete(userId string) {
	r.cache.Delete(userId)
}

// Flush clears every user's record.
func (r *UserStateRepository) Flush() {
	r.cache.Flush()
}
