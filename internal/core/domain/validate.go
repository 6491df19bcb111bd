package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const dataURIPrefix = "data:image"

// IsImageValue reports whether a raw signature value is a data-URI image as
// opposed to typed text.
func IsImageValue(value string) bool {
	return strings.HasPrefix(value, dataURIPrefix)
}

// ValidateFieldValue checks a candidate value against the field's kind and
// metadata, and against the document's signature policy. It returns an error
// of kind ErrValidation for malformed values and ErrForbidden for values the
// document configuration disallows.
func ValidateFieldValue(field Field, meta DocumentMeta, value string, isBase64 bool) error {
	if strings.TrimSpace(value) == "" {
		return WrapError(ErrValidation, "validate field value", fmt.Errorf("empty value for %s field", field.Type))
	}

	switch field.Type {
	case FieldTypeSignature:
		return validateSignatureValue(meta, value, isBase64)
	case FieldTypeInitials, FieldTypeName, FieldTypeDate:
		return nil
	case FieldTypeEmail:
		if !strings.Contains(value, "@") {
			return WrapError(ErrValidation, "validate field value", fmt.Errorf("%q is not an email address", value))
		}
		return nil
	case FieldTypeText:
		if limit := field.Meta.CharacterLimit; limit > 0 && len(value) > limit {
			return WrapError(ErrValidation, "validate field value", fmt.Errorf("text exceeds %d character limit", limit))
		}
		return nil
	case FieldTypeNumber:
		return validateNumberValue(field.Meta, value)
	case FieldTypeRadio, FieldTypeDropdown:
		return validateOptionValue(field.Type, field.Meta, value)
	case FieldTypeCheckbox:
		return validateCheckboxValue(field.Meta, value)
	default:
		return WrapError(ErrValidation, "validate field value", fmt.Errorf("unknown field type %q", field.Type))
	}
}

func validateSignatureValue(meta DocumentMeta, value string, isBase64 bool) error {
	if isBase64 || IsImageValue(value) {
		if !IsImageValue(value) {
			return WrapError(ErrValidation, "validate signature", errors.New("image signature must be a data-URI"))
		}
		if !meta.UploadSignatureEnabled && !meta.DrawSignatureEnabled {
			return WrapError(ErrForbidden, "validate signature", errors.New("image signatures are disabled for this document"))
		}
		return nil
	}

	if !meta.TypedSignatureEnabled {
		return WrapError(ErrForbidden, "validate signature", errors.New("typed signatures are disabled for this document"))
	}
	return nil
}

func validateNumberValue(meta FieldMeta, value string) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return WrapError(ErrValidation, "validate number", fmt.Errorf("%q is not a number", value))
	}
	if meta.MinValue != nil && n < *meta.MinValue {
		return WrapError(ErrValidation, "validate number", fmt.Errorf("%v is below the minimum %v", n, *meta.MinValue))
	}
	if meta.MaxValue != nil && n > *meta.MaxValue {
		return WrapError(ErrValidation, "validate number", fmt.Errorf("%v is above the maximum %v", n, *meta.MaxValue))
	}
	return nil
}

func validateOptionValue(fieldType FieldType, meta FieldMeta, value string) error {
	if len(meta.Values) == 0 {
		return nil
	}
	if !slices.Contains(meta.Values, value) {
		return WrapError(ErrValidation, "validate option", fmt.Errorf("%q is not an option of this %s field", value, fieldType))
	}
	return nil
}

// Checkbox values arrive as a comma-separated list of selected options.
func validateCheckboxValue(meta FieldMeta, value string) error {
	if len(meta.Values) == 0 {
		return nil
	}
	for _, selected := range strings.Split(value, ",") {
		selected = strings.TrimSpace(selected)
		if selected == "" {
			continue
		}
		if !slices.Contains(meta.Values, selected) {
			return WrapError(ErrValidation, "validate checkbox", fmt.Errorf("%q is not an option of this checkbox field", selected))
		}
	}
	return nil
}
