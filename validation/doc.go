// Package validation checks request DTOs and configuration values.
//
// Struct tags use go-playground/validator; errors come back as INVALID_INPUT
// AppErrors whose details list every failing field by its json name:
//
//	type joinRequest struct {
//	    UserName string `json:"user_name" validate:"required,max=64"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// The chainable Validator covers values that do not live in a struct:
//
//	err := validation.New().RoomCode("id", id).RequiredUUID("task_id", taskID).Validate()
package validation
