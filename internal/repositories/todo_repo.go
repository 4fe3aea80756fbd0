package repositories

import "todoapp/internal/models"

// TodoRepository defines the interface for todo data access.
// ListByUser returns the owner's todos ordered ascending by position order;
// an empty status means no status filter.
type TodoRepository interface {
	Create(todo *models.Todo) error
	GetByID(id string) (*models.Todo, error)
	ListByUser(userID string, status string) ([]models.Todo, error)
	Update(todo *models.Todo) error
	Delete(id string) error
}
