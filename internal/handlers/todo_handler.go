package handlers

import (
	"fmt"
	"log"

	"todoapp/internal/models"
	"todoapp/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TodoHandler handles HTTP requests for todos. All routes assume the JWT
// middleware already put the authenticated username into the context.
type TodoHandler struct {
	todoService *services.TodoService
	validate    *validator.Validate
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the todo routes with the Fiber app.
func (h *TodoHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.HandleCreateTodo)
	router.Get("/", h.HandleGetTodos)
	router.Put("/:id", h.HandleUpdateTodo)
	router.Delete("/:id", h.HandleDeleteTodo)
}

// TodoRequest represents the request body for creating or updating a todo.
// Absent status and positionOrder fall back to "new" and 0.
type TodoRequest struct {
	Title         string `json:"title" validate:"required,max=500"`
	Status        string `json:"status" validate:"omitempty,oneof=new inProgress done"`
	PositionOrder int    `json:"positionOrder"`
}

// toInput applies the field defaults and converts to the service input.
func (r TodoRequest) toInput() services.TodoInput {
	status := r.Status
	if status == "" {
		status = models.StatusNew
	}
	return services.TodoInput{
		Title:         r.Title,
		Status:        status,
		PositionOrder: r.PositionOrder,
	}
}

// currentUsername returns the authenticated identity stored by the JWT
// middleware.
func currentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

// parseTodoRequest parses and validates the request body, responding with
// 400 on failure. The bool reports whether the caller should continue.
func (h *TodoHandler) parseTodoRequest(c *fiber.Ctx, req *TodoRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		log.Printf("Error parsing todo request body: %v", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
			"code":    fiber.StatusBadRequest,
		})
	}

	if err := h.validate.Struct(*req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  errorMessages,
			"code":    fiber.StatusBadRequest,
		})
	}
	return true, nil
}

// HandleCreateTodo creates a new todo owned by the caller.
func (h *TodoHandler) HandleCreateTodo(c *fiber.Ctx) error {
	username := currentUsername(c)

	var req TodoRequest
	if ok, err := h.parseTodoRequest(c, &req); !ok {
		return err
	}

	todo, err := h.todoService.CreateTodo(username, req.toInput())
	if err != nil {
		log.Printf("Error creating todo for user %s: %v", username, err)
		return respondError(c, err)
	}

	log.Printf("Todo created for user %s: id=%s", username, todo.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":  "success",
		"message": "Todo created successfully",
		"todo":    todo,
		"code":    fiber.StatusCreated,
	})
}

// HandleGetTodos lists the caller's todos ordered ascending by position
// order, optionally filtered by the status query parameter.
func (h *TodoHandler) HandleGetTodos(c *fiber.Ctx) error {
	username := currentUsername(c)
	status := c.Query("status")

	todos, err := h.todoService.ListTodos(username, status)
	if err != nil {
		log.Printf("Error fetching todos for user %s: %v", username, err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"todos":  todos,
		"code":   fiber.StatusOK,
	})
}

// HandleUpdateTodo overwrites the caller's todo.
func (h *TodoHandler) HandleUpdateTodo(c *fiber.Ctx) error {
	username := currentUsername(c)
	todoID := c.Params("id")

	var req TodoRequest
	if ok, err := h.parseTodoRequest(c, &req); !ok {
		return err
	}

	todo, err := h.todoService.UpdateTodo(username, todoID, req.toInput())
	if err != nil {
		log.Printf("Error updating todo %s for user %s: %v", todoID, username, err)
		return respondError(c, err)
	}

	log.Printf("Todo updated for user %s: id=%s", username, todo.ID)
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Todo updated successfully",
		"todo":    todo,
		"code":    fiber.StatusOK,
	})
}

// HandleDeleteTodo permanently removes the caller's todo.
func (h *TodoHandler) HandleDeleteTodo(c *fiber.Ctx) error {
	username := currentUsername(c)
	todoID := c.Params("id")

	if err := h.todoService.DeleteTodo(username, todoID); err != nil {
		log.Printf("Error deleting todo %s for user %s: %v", todoID, username, err)
		return respondError(c, err)
	}

	log.Printf("Todo deleted for user %s: id=%s", username, todoID)
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Todo deleted successfully",
		"code":    fiber.StatusOK,
	})
}
