package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeDeclarationNotFound, "Function declaration not found")
		if err.Error() != "[DECLARATION_NOT_FOUND] Function declaration not found" {
			t.Errorf("unexpected message: %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeParserError, "parse failure")
		expected := "[PARSER_ERROR] parse failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeCallNotFound, "Function not found")
		if !IsCode(err, CodeCallNotFound) {
			t.Error("expected IsCode to match CodeCallNotFound")
		}
		if IsCode(err, CodeParserError) {
			t.Error("expected IsCode to reject CodeParserError")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeProjectIO, "read failed")
		if !IsCode(err, CodeProjectIO) {
			t.Error("expected IsCode to match wrapped CodeProjectIO")
		}
	})
}

func TestRecoverable(t *testing.T) {
	recoverable := []ErrorCode{
		CodeDeclarationNotFound,
		CodeAmbiguousDeclaration,
		CodeCallNotFound,
		CodePlannerCycle,
	}
	for _, code := range recoverable {
		if !Recoverable(New(code, "x")) {
			t.Errorf("expected %s to be recoverable", code)
		}
	}

	fatal := []ErrorCode{CodeParserError, CodeProjectIO, CodeInternal}
	for _, code := range fatal {
		if Recoverable(New(code, "x")) {
			t.Errorf("expected %s to be fatal", code)
		}
	}

	if Recoverable(errors.New("plain")) {
		t.Error("plain errors are fatal")
	}
}

func TestMessage(t *testing.T) {
	if Message(New(CodeCallNotFound, "Function not found")) != "Function not found" {
		t.Error("expected bare message")
	}
	if Message(errors.New("plain")) != "plain" {
		t.Error("expected plain error text")
	}
}
