package domain

import "testing"

func float(f float64) *float64 {
	return &f
}

func TestValidateFieldValueRejectsEmpty(t *testing.T) {
	err := ValidateFieldValue(Field{Type: FieldTypeText}, DocumentMeta{}, "   ", false)
	if !IsKind(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateSignatureTypedRequiresPolicy(t *testing.T) {
	field := Field{Type: FieldTypeSignature}

	err := ValidateFieldValue(field, DocumentMeta{TypedSignatureEnabled: false}, "John Doe", false)
	if !IsKind(err, ErrForbidden) {
		t.Fatalf("typed signature against disabled policy: expected forbidden, got %v", err)
	}

	err = ValidateFieldValue(field, DocumentMeta{TypedSignatureEnabled: true}, "John Doe", false)
	if err != nil {
		t.Fatalf("typed signature with policy enabled: %v", err)
	}
}

func TestValidateSignatureImageRequiresPolicy(t *testing.T) {
	field := Field{Type: FieldTypeSignature}
	image := "data:image/png;base64,AAA"

	err := ValidateFieldValue(field, DocumentMeta{}, image, true)
	if !IsKind(err, ErrForbidden) {
		t.Fatalf("image signature with drawing and upload disabled: expected forbidden, got %v", err)
	}

	err = ValidateFieldValue(field, DocumentMeta{DrawSignatureEnabled: true}, image, true)
	if err != nil {
		t.Fatalf("image signature with draw enabled: %v", err)
	}

	err = ValidateFieldValue(field, DocumentMeta{DrawSignatureEnabled: true}, "not-a-data-uri", true)
	if !IsKind(err, ErrValidation) {
		t.Fatalf("base64 flag without data-URI: expected validation error, got %v", err)
	}
}

func TestValidateEmailField(t *testing.T) {
	field := Field{Type: FieldTypeEmail}

	if err := ValidateFieldValue(field, DocumentMeta{}, "user@example.com", false); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "not-an-email", false); !IsKind(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateTextCharacterLimit(t *testing.T) {
	field := Field{Type: FieldTypeText, Meta: FieldMeta{CharacterLimit: 5}}

	if err := ValidateFieldValue(field, DocumentMeta{}, "12345", false); err != nil {
		t.Fatalf("value at limit rejected: %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "123456", false); !IsKind(err, ErrValidation) {
		t.Fatalf("expected validation error past limit, got %v", err)
	}
}

func TestValidateNumberBounds(t *testing.T) {
	field := Field{Type: FieldTypeNumber, Meta: FieldMeta{MinValue: float(1), MaxValue: float(10)}}

	if err := ValidateFieldValue(field, DocumentMeta{}, "5.5", false); err != nil {
		t.Fatalf("in-range number rejected: %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "0.5", false); !IsKind(err, ErrValidation) {
		t.Fatalf("below minimum: expected validation error, got %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "11", false); !IsKind(err, ErrValidation) {
		t.Fatalf("above maximum: expected validation error, got %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "NaN?", false); !IsKind(err, ErrValidation) {
		t.Fatalf("non-number: expected validation error, got %v", err)
	}
}

func TestValidateRadioAndDropdownOptions(t *testing.T) {
	for _, fieldType := range []FieldType{FieldTypeRadio, FieldTypeDropdown} {
		field := Field{Type: fieldType, Meta: FieldMeta{Values: []string{"red", "green"}}}

		if err := ValidateFieldValue(field, DocumentMeta{}, "green", false); err != nil {
			t.Fatalf("%s: listed option rejected: %v", fieldType, err)
		}
		if err := ValidateFieldValue(field, DocumentMeta{}, "blue", false); !IsKind(err, ErrValidation) {
			t.Fatalf("%s: expected validation error for unlisted option, got %v", fieldType, err)
		}
	}
}

func TestValidateCheckboxSelection(t *testing.T) {
	field := Field{Type: FieldTypeCheckbox, Meta: FieldMeta{Values: []string{"a", "b", "c"}}}

	if err := ValidateFieldValue(field, DocumentMeta{}, "a, c", false); err != nil {
		t.Fatalf("valid selection rejected: %v", err)
	}
	if err := ValidateFieldValue(field, DocumentMeta{}, "a,x", false); !IsKind(err, ErrValidation) {
		t.Fatalf("expected validation error for unlisted selection, got %v", err)
	}
}

func TestValidateOptionsUnconstrainedWhenNoValues(t *testing.T) {
	field := Field{Type: FieldTypeDropdown}
	if err := ValidateFieldValue(field, DocumentMeta{}, "anything", false); err != nil {
		t.Fatalf("dropdown without configured options should accept any value: %v", err)
	}
}

func TestIsImageValue(t *testing.T) {
	if !IsImageValue("data:image/png;base64,AAA") {
		t.Fatal("data-URI should be an image value")
	}
	if IsImageValue("John Doe") {
		t.Fatal("plain text is not an image value")
	}
}
