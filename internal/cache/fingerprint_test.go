package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintStableUnderKeyOrder(t *testing.T) {
	a := []byte(`{"model":"gpt-4","messages":[{"role":"user","content":"hi"}],"temperature":0,"top_p":1}`)
	b := []byte(`{"top_p":1,"temperature":0,"messages":[{"content":"hi","role":"user"}],"model":"gpt-4"}`)
	require.Equal(t, Fingerprint("gemini-2.5-pro", a), Fingerprint("gemini-2.5-pro", b))
}

func TestFingerprintNormalizesNumbers(t *testing.T) {
	a := []byte(`{"messages":[],"temperature":0}`)
	b := []byte(`{"messages":[],"temperature":0.0}`)
	c := []byte(`{"messages":[],"temperature":0e0}`)
	require.Equal(t, Fingerprint("m", a), Fingerprint("m", b))
	require.Equal(t, Fingerprint("m", a), Fingerprint("m", c))
}

func TestFingerprintSensitiveToContent(t *testing.T) {
	a := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	b := []byte(`{"messages":[{"role":"user","content":"hello"}]}`)
	require.NotEqual(t, Fingerprint("m", a), Fingerprint("m", b))
}

func TestFingerprintSensitiveToModel(t *testing.T) {
	body := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	require.NotEqual(t, Fingerprint("gemini-2.5-pro", body), Fingerprint("gemini-2.5-flash", body))
}

func TestFingerprintIgnoresStreamFlag(t *testing.T) {
	a := []byte(`{"messages":[{"role":"user","content":"hi"}],"stream":false}`)
	b := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, Fingerprint("m", a), Fingerprint("m", b))
}

func TestEligible(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"plain", `{"messages":[]}`, true},
		{"temperature zero", `{"messages":[],"temperature":0}`, true},
		{"streaming", `{"messages":[],"stream":true}`, false},
		{"nonzero temperature", `{"messages":[],"temperature":0.7}`, false},
		{"tools present", `{"messages":[],"tools":[{"type":"function","function":{"name":"f"}}]}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Eligible([]byte(tc.body)))
		})
	}
}
