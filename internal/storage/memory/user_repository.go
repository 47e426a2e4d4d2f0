package memory

import (
	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// userRepository — in-memory реализация UserRepository поверх Store.
type userRepository struct {
	store *Store
}

// NewUserRepository возвращает in-memory репозиторий пользователей.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.users[user.ID] = user
	return nil
}

func (r *userRepository) Get(id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepository) Ref(id string) (domain.UserRef, error) {
	user, err := r.Get(id)
	if err != nil {
		return domain.UserRef{}, err
	}
	return user.Ref(), nil
}

func (r *userRepository) Update(user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.store.users[user.ID] = user
	return nil
}

var _ domain.UserRepository = (*userRepository)(nil)
