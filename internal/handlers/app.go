package handlers

import "github.com/gofiber/fiber/v2"

// NewApp creates the fiber app for the review API. Route params and form
// values end up in the long-lived session (comment keys, hidden guids, layer
// tags, repository paths), so they must not alias fiber's request buffers.
func NewApp(bodyLimit int) *fiber.App {
	return fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
		Immutable: true,
	})
}
