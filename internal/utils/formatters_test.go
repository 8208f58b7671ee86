package utils

import (
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ramesh at the rate gmail dot com", "ramesh@gmail.com"},
		{"Ramesh At The Rate Gmail Dot Com", "ramesh@gmail.com"},
		{"ramesh at gmail dot com", "ramesh@gmail.com"},
		{"ramesh एट द रेट gmail डॉट com", "ramesh@gmail.com"},
		{"ramesh gmail dot com", "ramesh@gmail.com"},
		{"ramesh gmail", "ramesh@gmail.com"},
		{"sita at the rate yahoo dot co dot in", "sita@yahoo.co.in"},
		{"ramesh, at the rate gmail dot com!", "ramesh@gmail.com"},
		{"ramesh at the rate gmail dot com.", "ramesh@gmail.com"},
		{"no provider here", "noproviderhere"},
		{"that the rate gmail", "thattherate@gmail.com"},
		{"kat at gmail", "kat@gmail.com"},
		{"kat at the rate जीमेल", "kat@gmail.com"},
		{"kat at the rate of yahoo", "kat@yahoo.com"},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeEmail_ProviderKeywordYieldsSingleAt(t *testing.T) {
	inputs := []string{
		"ramesh at the rate gmail dot com",
		"ramesh gmail dot com",
		"a at b at the rate gmail dot com",
		"ramesh dot kumar hotmail",
		"priya outlook dot com at",
		"मोहन जीमेल डॉट कॉम",
	}
	for _, in := range inputs {
		got := NormalizeEmail(in)
		if strings.Count(got, "@") != 1 {
			t.Fatalf("NormalizeEmail(%q) = %q: want exactly one @", in, got)
		}
		if domain := got[strings.Index(got, "@")+1:]; domain == "" {
			t.Fatalf("NormalizeEmail(%q) = %q: empty domain", in, got)
		}
	}
}

func TestNormalizeEmail_Idempotent(t *testing.T) {
	for _, in := range []string{"ramesh@gmail.com", "ramesh at the rate gmail dot com", "ramesh gmail", "sita.devi@yahoo.co.in"} {
		once := NormalizeEmail(in)
		if twice := NormalizeEmail(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeBloodGroup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"B positive", "B+"},
		{"b negative", "B-"},
		{"A positive", "A+"},
		{"AB negative", "AB-"},
		{"a b positive", "AB+"},
		{"O positive", "O+"},
		{"oh negative", "O-"},
		{"बी पॉजिटिव", "B+"},
		{"एबी नेगेटिव", "AB-"},
		{"ओ पॉजिटिव", "O+"},
		{"my blood group is b positive", "B+"},
		{"I am a B positive", "B+"},
		{"my blood group is a B negative", "B-"},
		{"it's a b positive", "B+"},
		{"I am a positive", "A+"},
		{"my blood group is a", "A"},
		{"O", "O"},
		{"B+", "B+"},
		{"ab-", "AB-"},
		{"o +ve", "O+"},
		{"I don't know", "I don't know"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeBloodGroup(tc.in); got != tc.want {
			t.Fatalf("NormalizeBloodGroup(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeBloodGroup_OutputSet(t *testing.T) {
	valid := map[string]bool{}
	for _, l := range []string{"A", "B", "AB", "O"} {
		for _, s := range []string{"", "+", "-"} {
			valid[l+s] = true
		}
	}
	inputs := []string{
		"b positive", "negative o", "ab", "a b", "bee plus", "ओ", "ए माइनस",
		"blood group a", "o-", "hello world", "positive", "12345",
	}
	for _, in := range inputs {
		got := NormalizeBloodGroup(in)
		if !valid[got] && got != in {
			t.Fatalf("NormalizeBloodGroup(%q) = %q: neither a blood group nor the input", in, got)
		}
	}
}

func TestNormalizeBloodGroup_Idempotent(t *testing.T) {
	for _, in := range []string{"b positive", "AB-", "o", "एबी पॉजिटिव", "unknown"} {
		once := NormalizeBloodGroup(in)
		if twice := NormalizeBloodGroup(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
