package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ChenBaiWa/studentSystem/internal/config"
	"github.com/ChenBaiWa/studentSystem/internal/handler"
	"github.com/ChenBaiWa/studentSystem/internal/middleware"
	"github.com/ChenBaiWa/studentSystem/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ExerciseHandler          *handler.ExerciseHandler
	ExerciseSetHandler       *handler.ExerciseSetHandler
	AssignmentHandler        *handler.AssignmentHandler
	StudentAssignmentHandler *handler.StudentAssignmentHandler
	ClassHandler             *handler.ClassHandler
	TextbookHandler          *handler.TextbookHandler
	JWTMiddleware            fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	requireStudent := middleware.WithAuth(passNext, middleware.AuthOptions{Role: middleware.AuthRoleStudent})
	requireTeacher := middleware.WithAuth(passNext, middleware.AuthOptions{Role: middleware.AuthRoleTeacher})

	// Student surface
	student := app.Group("/student", jwtMiddleware, requireStudent)
	if deps.ExerciseHandler != nil {
		deps.ExerciseHandler.Register(student.Group("/exercise-auto-grade"))
	}
	studentSets := student.Group("/exercise-sets")
	if deps.ExerciseSetHandler != nil {
		deps.ExerciseSetHandler.RegisterStudent(studentSets)
	}
	if deps.ExerciseHandler != nil {
		deps.ExerciseHandler.RegisterSets(studentSets)
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.RegisterStudent(student.Group("/classes"))
	}
	if deps.StudentAssignmentHandler != nil {
		assignments := app.Group("/student-assignments", jwtMiddleware, requireStudent)
		deps.StudentAssignmentHandler.Register(assignments)
	}

	// Teacher surface
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(app.Group("/assignments", jwtMiddleware, requireTeacher))
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.RegisterTeacher(app.Group("/classes", jwtMiddleware, requireTeacher))
	}
	if deps.ExerciseSetHandler != nil {
		deps.ExerciseSetHandler.RegisterTeacher(app.Group("/exercise-sets", jwtMiddleware, requireTeacher))
		deps.ExerciseSetHandler.RegisterQuestions(app.Group("/questions", jwtMiddleware, requireTeacher))
	}
	if deps.TextbookHandler != nil {
		deps.TextbookHandler.Register(app.Group("/textbooks", jwtMiddleware, requireTeacher))
	}
}

func passNext(c *fiber.Ctx) error {
	return c.Next()
}
