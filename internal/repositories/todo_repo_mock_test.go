package repositories_test

import (
	"errors"
	"testing"

	"todoapp/internal/models"
	"todoapp/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestMockTodoRepository_ListByUserOrdering(t *testing.T) {
	repo := repositories.NewMockTodoRepository()

	// Insert out of position order
	for _, todo := range []models.Todo{
		{Title: "third", PositionOrder: 30, UserID: "user-1", Status: models.StatusNew},
		{Title: "first", PositionOrder: 10, UserID: "user-1", Status: models.StatusDone},
		{Title: "second", PositionOrder: 20, UserID: "user-1", Status: models.StatusNew},
		{Title: "other user", PositionOrder: 5, UserID: "user-2", Status: models.StatusNew},
	} {
		todoCopy := todo
		assert.NoError(t, repo.Create(&todoCopy))
	}

	todos, err := repo.ListByUser("user-1", "")
	assert.NoError(t, err)
	assert.Len(t, todos, 3)
	assert.Equal(t, "first", todos[0].Title)
	assert.Equal(t, "second", todos[1].Title)
	assert.Equal(t, "third", todos[2].Title)

	// Another user's list never includes them
	todos, err = repo.ListByUser("user-2", "")
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, "other user", todos[0].Title)

	// Status filter
	todos, err = repo.ListByUser("user-1", models.StatusDone)
	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, "first", todos[0].Title)

	// No todos at all
	todos, err = repo.ListByUser("user-3", "")
	assert.NoError(t, err)
	assert.Empty(t, todos)
}

func TestMockTodoRepository_NotFound(t *testing.T) {
	repo := repositories.NewMockTodoRepository()

	_, err := repo.GetByID("missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	err = repo.Update(&models.Todo{ID: "missing", Title: "x"})
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	err = repo.Delete("missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestMockTodoRepository_CreateAssignsID(t *testing.T) {
	repo := repositories.NewMockTodoRepository()

	todo := &models.Todo{Title: "Buy milk", UserID: "user-1", Status: models.StatusNew}
	assert.NoError(t, repo.Create(todo))
	assert.NotEmpty(t, todo.ID)

	fetched, err := repo.GetByID(todo.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Buy milk", fetched.Title)
}

func TestMockUserRepository_Lookups(t *testing.T) {
	repo := repositories.NewMockUserRepository()

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	assert.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	byName, err := repo.GetByUsername("alice")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail("alice@example.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.GetByUsername("bob")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))

	// Users without an email never match an empty email lookup
	noEmail := &models.User{Username: "bob", Password: "hash"}
	assert.NoError(t, repo.Create(noEmail))
	_, err = repo.GetByEmail("")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
