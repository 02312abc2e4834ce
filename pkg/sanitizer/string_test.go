package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  농구공  ",
			want:  "농구공",
		},
		{
			name:  "multiple spaces",
			input: "체육관   무대 옆 창고",
			want:  "체육관 무대 옆 창고",
		},
		{
			name:  "tabs and newlines",
			input: "피구공\t\n세트",
			want:  "피구공 세트",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeClass(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "3-1",
			want:  "3-1",
		},
		{
			name:  "inner spaces",
			input: " 3 - 1 ",
			want:  "3-1",
		},
		{
			name:  "korean name",
			input: "김 선생",
			want:  "김선생",
		},
		{
			name:  "empty",
			input: "\t",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeClass(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeClass(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeClass(got); again != got {
				t.Errorf("NormalizeClass is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  공이 찢어짐   \n  바람 빠짐  \n")
	want := "공이 찢어짐\n  바람 빠짐"
	if got != want {
		t.Errorf("NormalizeText() = %q, want %q", got, want)
	}
}
