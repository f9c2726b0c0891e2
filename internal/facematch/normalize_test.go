package facematch

import "testing"

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ngozi", "Ngozi"},
		{"Adébáyọ̀", "Adebayo"},
		{"Oluwaṣeun", "Oluwaseun"},
		{"Chloé", "Chloe"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeStaffName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ngozi Okafor", "ngozi okafor"},
		{"ngozi-okafor", "ngozi okafor"},
		{"MRS. ADÉ  BELLO", "mrs ade bello"},
		{"  trailing  ", "trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeStaffName(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeStaffName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNameMatchesQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"Adé, Oluwaṣeun", "oluwaseun ade", true},
		{"Ngozi Okafor", "okafor", true},
		{"Ngozi Okafor", "ngo oka", true},
		{"Ngozi Okafor", "bello", false},
		{"Ngozi Okafor", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			if got := NameMatchesQuery(tt.name, tt.query); got != tt.want {
				t.Errorf("NameMatchesQuery(%q, %q) = %v, want %v", tt.name, tt.query, got, tt.want)
			}
		})
	}
}
