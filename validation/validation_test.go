package validation

import (
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/huddle/errors"
)

type createMeetingRequest struct {
	Title     string `json:"title" validate:"notblank,max=200"`
	OwnerName string `json:"owner_name" validate:"required,max=64"`
}

func TestValidateStruct(t *testing.T) {
	if err := Validate(createMeetingRequest{Title: "Standup", OwnerName: "alice"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := Validate(createMeetingRequest{Title: "   "})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two field errors, got %#v", appErr.Details["fields"])
	}
	if fields[0].Field != "title" || fields[1].Field != "owner_name" {
		t.Errorf("fields should use json names, got %+v", fields)
	}
}

func TestVar(t *testing.T) {
	if err := Var("id", "AB12CD", "required,roomcode"); err != nil {
		t.Errorf("valid room code rejected: %v", err)
	}
	err := Var("id", "ab-12", "required,roomcode")
	if !apperrors.IsCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	appErr, _ := apperrors.AsAppError(err)
	if appErr.Details["field"] != "id" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestValidatorChain(t *testing.T) {
	err := New().
		Required("user_name", "bob").
		RoomCode("id", "XYZ789").
		RequiredUUID("task_id", uuid.NewString()).
		OneOf("policy", "per_chunk", []string{"per_chunk", "on_end"}).
		Validate()
	if err != nil {
		t.Fatalf("expected no errors, got %v", err)
	}

	v := New().
		Required("user_name", "  ").
		MaxLength("title", "abcdef", 3).
		RoomCode("id", "lower").
		RequiredUUID("task_id", uuid.Nil.String()).
		OneOf("policy", "sometimes", []string{"per_chunk", "on_end"}).
		Custom(false, "max_participants", "must be positive")
	if len(v.Errors()) != 6 {
		t.Fatalf("expected 6 errors, got %+v", v.Errors())
	}
	if !apperrors.IsCode(v.Validate(), apperrors.ErrCodeInvalidInput) {
		t.Error("expected INVALID_INPUT")
	}
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{"UserName": "user_name", "ID": "i_d", "title": "title"}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
