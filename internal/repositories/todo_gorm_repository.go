package repositories

import (
	"fmt"

	"todoapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTodoRepository is a GORM implementation of TodoRepository.
type GORMTodoRepository struct {
	db *gorm.DB
}

// NewGORMTodoRepository creates a new instance of GORMTodoRepository.
func NewGORMTodoRepository(db *gorm.DB) *GORMTodoRepository {
	return &GORMTodoRepository{
		db: db,
	}
}

// Create creates a new todo in the database.
func (r *GORMTodoRepository) Create(todo *models.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.New().String()
	}
	if err := r.db.Create(todo).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// GetByID retrieves a single todo by its ID from the database.
func (r *GORMTodoRepository) GetByID(id string) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.First(&todo, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("todo with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get todo by ID %s: %w", id, err)
	}
	return &todo, nil
}

// ListByUser retrieves a user's todos ordered ascending by position order,
// optionally filtered by status.
func (r *GORMTodoRepository) ListByUser(userID string, status string) ([]models.Todo, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var todos []models.Todo
	if err := query.Order("position_order asc").Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos for user %s: %w", userID, err)
	}
	return todos, nil
}

// Update updates an existing todo in the database.
func (r *GORMTodoRepository) Update(todo *models.Todo) error {
	res := r.db.Save(todo) // Save writes all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound when no rows matched,
		// so we check RowsAffected.
		return fmt.Errorf("todo with ID %s: %w", todo.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a todo by its ID from the database.
func (r *GORMTodoRepository) Delete(id string) error {
	res := r.db.Delete(&models.Todo{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("todo with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
