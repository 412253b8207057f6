package commands

import "testing"

func TestTransportCountExactlyOneRequired(t *testing.T) {
	cases := []struct {
		name  string
		flags bridgeFlags
		want  int
	}{
		{"none", bridgeFlags{}, 0},
		{"stdio", bridgeFlags{stdio: true}, 1},
		{"nodeIPC", bridgeFlags{nodeIPC: true}, 1},
		{"socket", bridgeFlags{socketPort: 4711}, 1},
		{"stdioAndSocket", bridgeFlags{stdio: true, socketPort: 4711}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.flags.transportCount(); got != tc.want {
				t.Errorf("transportCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestOpenTransportRejectsNoTransport(t *testing.T) {
	if _, err := openTransport(bridgeFlags{}); err == nil {
		t.Error("expected error when no transport flag is set")
	}
}

func TestOpenTransportStdio(t *testing.T) {
	stream, err := openTransport(bridgeFlags{stdio: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stream == nil {
		t.Error("expected a non-nil stdio stream")
	}
}
