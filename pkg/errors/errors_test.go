package errors

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestNewParseError(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		line    int
		reason  string
		wantMsg string
	}{
		{
			name:    "with line number",
			path:    "train.csv",
			line:    12,
			reason:  "wrong number of fields",
			wantMsg: "titanic: train.csv: line 12: wrong number of fields",
		},
		{
			name:    "without line number",
			path:    "train.csv",
			line:    0,
			reason:  "empty file",
			wantMsg: "titanic: train.csv: empty file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewParseError(tt.path, tt.line, tt.reason)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			// ParseError型にキャスト可能か確認
			var parseErr *ParseError
			if !As(err, &parseErr) {
				t.Error("Error should be castable to *ParseError")
			}
		})
	}
}

func TestNewModelFitError(t *testing.T) {
	cause := New("singular matrix")
	err := NewModelFitError("linear-svm", cause)

	if !strings.Contains(err.Error(), `model "linear-svm" failed to fit`) {
		t.Errorf("unexpected message: %v", err)
	}

	// Unwrapで元のエラーに到達できるか確認
	if !Is(err, cause) {
		t.Error("ModelFitError should unwrap to its cause")
	}

	var fitErr *ModelFitError
	if !As(err, &fitErr) {
		t.Fatal("Error should be castable to *ModelFitError")
	}
	if fitErr.ModelID != "linear-svm" {
		t.Errorf("ModelID = %q, want %q", fitErr.ModelID, "linear-svm")
	}
}

func TestNewInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("KNNImputer.Fit", 5, 2)

	want := "titanic: KNNImputer.Fit: insufficient data: need 5 fully observed rows, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var insErr *InsufficientDataError
	if !As(err, &insErr) {
		t.Fatal("Error should be castable to *InsufficientDataError")
	}
	if insErr.Needed != 5 || insErr.Got != 2 {
		t.Errorf("Needed/Got = %d/%d, want 5/2", insErr.Needed, insErr.Got)
	}
}

func TestNewSchemaMismatchError(t *testing.T) {
	err := NewSchemaMismatchError([]string{"Age", "Fare"}, []string{"Age"})

	var schemaErr *SchemaMismatchError
	if !As(err, &schemaErr) {
		t.Fatal("Error should be castable to *SchemaMismatchError")
	}
	if len(schemaErr.Expected) != 2 || len(schemaErr.Got) != 1 {
		t.Errorf("unexpected column sets: %v vs %v", schemaErr.Expected, schemaErr.Got)
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "wrapped fs.ErrNotExist",
			err:  Wrap(fs.ErrNotExist, "open train.csv"),
			want: true,
		},
		{
			name: "parse error",
			err:  NewParseError("train.csv", 1, "bad header"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("OneHotEncoder", "Transform")

	want := "titanic: OneHotEncoder: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}
