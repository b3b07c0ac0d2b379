package identity

import "testing"

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "  Alice@Example.COM ", want: "alice@example.com"},
		{in: "bob@example.com", want: "bob@example.com"},
		{in: "   ", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFullName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "  Alice   Anderson ", want: "Alice Anderson"},
		{in: "Bob", want: "Bob"},
		{in: "\tCara\nCampbell", want: "Cara Campbell"},
		{in: "   ", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeFullName(tc.in); got != tc.want {
			t.Fatalf("NormalizeFullName(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}
