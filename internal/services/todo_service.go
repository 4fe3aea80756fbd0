package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"
	"unicode/utf8"

	"todoapp/internal/apperrors"
	"todoapp/internal/models"
	"todoapp/internal/repositories"

	"todoapp/pkg/rabbitmq"
)

// EventPublisher publishes todo change events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// TodoInput carries the writable fields of a todo. Handlers apply the
// defaults (status "new", position order 0) before calling the service.
type TodoInput struct {
	Title         string
	Status        string
	PositionOrder int
}

// TodoService handles business logic for todos. Every operation takes the
// authenticated username and enforces that only the owner can see or mutate
// an item.
type TodoService struct {
	todoRepo  repositories.TodoRepository
	userRepo  repositories.UserRepository
	publisher EventPublisher
}

// NewTodoService creates a new TodoService. publisher may be nil, in which
// case no events are emitted.
func NewTodoService(todoRepo repositories.TodoRepository, userRepo repositories.UserRepository, publisher EventPublisher) *TodoService {
	return &TodoService{
		todoRepo:  todoRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

// validateInput checks the title and status preconditions shared by create
// and update.
func validateInput(input TodoInput) error {
	if input.Title == "" {
		return apperrors.New(apperrors.InvalidInput, "missing_title", "Title is required")
	}
	if utf8.RuneCountInString(input.Title) > 500 {
		return apperrors.New(apperrors.InvalidInput, "title_too_long", "Title cannot exceed 500 characters")
	}
	if !models.ValidStatus(input.Status) {
		return apperrors.New(apperrors.InvalidInput, "invalid_status", "Status must be 'new', 'inProgress', or 'done'")
	}
	return nil
}

// currentUser resolves the authenticated username to a stored user. A valid
// token whose user no longer exists yields NotFound.
func (s *TodoService) currentUser(username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "user_not_found", "User not found")
		}
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not load user")
	}
	return user, nil
}

// CreateTodo persists a new todo owned by the caller.
func (s *TodoService) CreateTodo(username string, input TodoInput) (*models.Todo, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.currentUser(username)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	todo := &models.Todo{
		Title:         input.Title,
		Status:        input.Status,
		PositionOrder: input.PositionOrder,
		UserID:        user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.todoRepo.Create(todo); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Failed to create todo")
	}

	s.publishEvent("todo.created", todo)
	return todo, nil
}

// ListTodos returns the caller's todos ordered ascending by position order.
// An empty status means no filter.
func (s *TodoService) ListTodos(username string, status string) ([]models.Todo, error) {
	if status != "" && !models.ValidStatus(status) {
		return nil, apperrors.New(apperrors.InvalidInput, "invalid_status", "Status must be 'new', 'inProgress', or 'done'")
	}

	user, err := s.currentUser(username)
	if err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListByUser(user.ID, status)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Failed to fetch todos")
	}
	return todos, nil
}

// ownedTodo loads the todo and enforces ownership: a missing id yields
// NotFound, an existing todo owned by someone else yields Forbidden.
func (s *TodoService) ownedTodo(username, id string) (*models.Todo, error) {
	todo, err := s.todoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "todo_not_found", "Todo not found")
		}
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not load todo")
	}

	user, err := s.currentUser(username)
	if err != nil {
		return nil, err
	}
	if todo.UserID != user.ID {
		return nil, apperrors.New(apperrors.Forbidden, "not_owner", "Unauthorized access")
	}
	return todo, nil
}

// UpdateTodo overwrites the writable fields of the caller's todo and
// refreshes its updated timestamp. CreatedAt and the owner never change.
func (s *TodoService) UpdateTodo(username, id string, input TodoInput) (*models.Todo, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	todo, err := s.ownedTodo(username, id)
	if err != nil {
		return nil, err
	}

	todo.Title = input.Title
	todo.Status = input.Status
	todo.PositionOrder = input.PositionOrder
	todo.UpdatedAt = time.Now()

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Failed to update todo")
	}

	s.publishEvent("todo.updated", todo)
	return todo, nil
}

// DeleteTodo permanently removes the caller's todo.
func (s *TodoService) DeleteTodo(username, id string) error {
	todo, err := s.ownedTodo(username, id)
	if err != nil {
		return err
	}

	if err := s.todoRepo.Delete(todo.ID); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "internal_error", "Failed to delete todo")
	}

	s.publishEvent("todo.deleted", todo)
	return nil
}

// publishEvent emits a todo change event. Publishing is best-effort:
// failures are logged and never surfaced to the caller.
func (s *TodoService) publishEvent(event string, todo *models.Todo) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"event":  event,
		"todoID": todo.ID,
		"userID": todo.UserID,
		"status": todo.Status,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for todo %s: %v", event, todo.ID, err)
		return
	}

	if err := s.publisher.Publish(rabbitmq.TodoEventsQueue, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for todo %s: %v", event, todo.ID, err)
	}
}
