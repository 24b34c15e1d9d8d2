package validator

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFlexInt_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: `101`, want: 101},
		{in: `"101"`, want: 101},
		{in: `" 7 "`, want: 7},
		{in: `101.0`, want: 101},
		{in: `-3`, want: -3},
		{in: `101.5`, wantErr: true},
		{in: `"abc"`, wantErr: true},
		{in: `true`, wantErr: true},
		{in: `null`, wantErr: true},
		{in: `[1]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexInt
			err := json.Unmarshal([]byte(tt.in), &f)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", f)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Int64() != tt.want {
				t.Errorf("got %d, want %d", f, tt.want)
			}
		})
	}
}

func TestValidator_CourseCreate(t *testing.T) {
	v := New()

	var ok CourseCreateRequest
	if err := json.Unmarshal([]byte(`{"subject":"CS","number":"101","title":"Intro","term":"F24","instructor_id":5}`), &ok); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := v.Validate(&ok); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	var missing CourseCreateRequest
	_ = json.Unmarshal([]byte(`{"subject":"CS","title":"","term":"F24"}`), &missing)
	err := v.Validate(&missing)

	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, f := range []string{"number", "title", "instructor_id"} {
		if !fields[f] {
			t.Errorf("expected error on %s, got %v", f, verrs)
		}
	}
	if fields["subject"] || fields["term"] {
		t.Errorf("unexpected errors %v", verrs)
	}
}

func TestValidator_CourseUpdate(t *testing.T) {
	v := New()

	var req CourseUpdateRequest
	_ = json.Unmarshal([]byte(`{"title":"Intro to CS","unknown":"ignored"}`), &req)
	if err := v.Validate(&req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if req.Empty() {
		t.Error("request with a title should not be empty")
	}
	if req.Subject != nil || req.Number != nil {
		t.Error("absent fields must stay nil")
	}

	var blank CourseUpdateRequest
	_ = json.Unmarshal([]byte(`{"subject":""}`), &blank)
	if err := v.Validate(&blank); err == nil {
		t.Error("blank subject should be rejected")
	}

	var empty CourseUpdateRequest
	if !empty.Empty() {
		t.Error("zero request should be empty")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	if got := (ValidationErrors{}).Error(); got != "validation failed" {
		t.Errorf("unexpected message %q", got)
	}
	one := ValidationErrors{{Field: "title", Message: "is required"}}
	if got := one.Error(); got != "validation failed: title is required" {
		t.Errorf("unexpected message %q", got)
	}
}
